package certificate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
)

const DocumentVersion = "2.0"

// Document is the signed certificate as handed to a lender. Field names and
// nesting are part of the external contract.
type Document struct {
	Version    string     `json:"ver"`
	UID        string     `json:"uid"`
	Meta       Meta       `json:"meta"`
	Financials Financials `json:"financials"`
	Security   Security   `json:"security"`
}

type Meta struct {
	GeneratedAt    int64  `json:"generated_at"`
	DeviceModel    string `json:"device_model"`
	Is65bCompliant bool   `json:"is_65b_compliant"`
}

type Financials struct {
	Period              string  `json:"period"`
	GrossIncome         float64 `json:"gross_income"`
	NetSurplus          float64 `json:"net_surplus"`
	ProfitMarginPercent int     `json:"profit_margin_percent"`
	StabilityScore      float64 `json:"stability_score"`
	StabilityBand       string  `json:"stability_band"`
}

// Security holds raw bytes; encoding/json emits them as standard base64.
type Security struct {
	Signature []byte `json:"signature"`
	PublicKey []byte `json:"public_key"`
}

func newDocument(p risk.Profile, id identity.Identity, device string, at time.Time, sig, pub []byte) Document {
	return Document{
		Version: DocumentVersion,
		UID:     id.UID(),
		Meta: Meta{
			GeneratedAt:    at.Unix(),
			DeviceModel:    device,
			Is65bCompliant: true,
		},
		Financials: Financials{
			Period:              p.Period,
			GrossIncome:         p.TotalIncome,
			NetSurplus:          p.NetSavings,
			ProfitMarginPercent: p.ProfitMarginPercent,
			StabilityScore:      p.StabilityScore,
			StabilityBand:       p.StabilityLabel,
		},
		Security: Security{Signature: sig, PublicKey: pub},
	}
}

// ParseDocument decodes a certificate payload.
func ParseDocument(payload string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return Document{}, fmt.Errorf("decoding certificate: %w", err)
	}

	return doc, nil
}
