// Package counterparty learns which counterparty a raw statement description
// belongs to.
package counterparty

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyMapping = errors.New("raw pattern and counterparty are required")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=counterparty
type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (string, error)
	CreateMapping(ctx context.Context, rawPattern, counterparty string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns the learned counterparty for rawDescription, or an empty
// string when no mapping matches.
func (s *Service) Resolve(ctx context.Context, rawDescription string) (string, error) {
	if strings.TrimSpace(rawDescription) == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, rawDescription)
}

// Learn remembers that descriptions containing rawPattern belong to
// counterparty. The longest matching pattern wins on lookup.
func (s *Service) Learn(ctx context.Context, rawPattern, counterparty string) error {
	rawPattern = strings.TrimSpace(rawPattern)
	counterparty = strings.TrimSpace(counterparty)

	if rawPattern == "" || counterparty == "" {
		return ErrEmptyMapping
	}

	return s.repo.CreateMapping(ctx, rawPattern, counterparty)
}
