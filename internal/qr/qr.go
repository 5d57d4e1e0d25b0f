// Package qr encodes certificate payloads as QR symbols for offline
// presentation.
package qr

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Margin is the quiet zone, in modules, around the symbol.
const Margin = 1

var ErrEmptyPayload = errors.New("empty payload")

// Symbol is a QR module matrix including its margin. True means dark.
type Symbol struct {
	Payload string
	modules [][]bool
}

// Encode builds a medium error correction symbol carrying payload byte for
// byte.
func Encode(payload string) (*Symbol, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encoding qr: %w", err)
	}

	code.DisableBorder = true

	return &Symbol{Payload: payload, modules: withMargin(code.Bitmap(), Margin)}, nil
}

func withMargin(core [][]bool, margin int) [][]bool {
	size := len(core) + 2*margin

	out := make([][]bool, size)
	for y := range out {
		out[y] = make([]bool, size)
	}

	for y, row := range core {
		copy(out[y+margin][margin:], row)
	}

	return out
}

// Size is the width and height in modules, margin included.
func (s *Symbol) Size() int {
	return len(s.modules)
}

// Dark reports whether the module at column x, row y is dark.
func (s *Symbol) Dark(x, y int) bool {
	return s.modules[y][x]
}

// Image renders the symbol with each module scale pixels wide.
func (s *Symbol) Image(scale int) image.Image {
	if scale < 1 {
		scale = 1
	}

	size := s.Size() * scale
	img := image.NewGray(image.Rect(0, 0, size, size))

	for py := range size {
		for px := range size {
			c := color.Gray{Y: 0xff}
			if s.modules[py/scale][px/scale] {
				c = color.Gray{Y: 0x00}
			}

			img.SetGray(px, py, c)
		}
	}

	return img
}

func (s *Symbol) PNG(w io.Writer, scale int) error {
	if err := png.Encode(w, s.Image(scale)); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}

	return nil
}

// String renders two module rows per text line using half blocks. Light
// modules are drawn so the symbol scans on dark terminal backgrounds.
func (s *Symbol) String() string {
	var b strings.Builder

	size := s.Size()

	for y := 0; y < size; y += 2 {
		for x := range size {
			top := !s.modules[y][x]
			bottom := y+1 < size && !s.modules[y+1][x]

			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}

		b.WriteByte('\n')
	}

	return b.String()
}
