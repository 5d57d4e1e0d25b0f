package certificate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgercert/internal/certificate"
	"github.com/MrJamesThe3rd/ledgercert/internal/http/request"
	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
	"github.com/MrJamesThe3rd/ledgercert/internal/qr"
	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	defaultQRScale      = 8
	maxQRScale          = 32
)

type ProfileSource interface {
	Profile(ctx context.Context, filter *risk.Month) (risk.Profile, error)
}

type IdentitySource interface {
	Get(ctx context.Context) (identity.Identity, error)
}

type Handler struct {
	certifier  *certificate.Certifier
	profiles   ProfileSource
	identities IdentitySource
}

func NewHandler(certifier *certificate.Certifier, profiles ProfileSource, identities IdentitySource) *Handler {
	return &Handler{
		certifier:  certifier,
		profiles:   profiles,
		identities: identities,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.certify)
	r.Get("/", h.current)
	r.Post("/reset", h.reset)
	r.Get("/qr", h.qr)
	r.Get("/history", h.history)
}

type certificateResponse struct {
	ID        *uuid.UUID        `json:"id,omitempty"`
	State     certificate.State `json:"state"`
	Reason    string            `json:"reason,omitempty"`
	Document  json.RawMessage   `json:"document,omitempty"`
	IssuedAt  *time.Time        `json:"issued_at,omitempty"`
	Signature []byte            `json:"signature,omitempty"`
	PublicKey []byte            `json:"public_key,omitempty"`
}

func toResponse(c certificate.Certificate) certificateResponse {
	resp := certificateResponse{
		State:     c.State,
		Reason:    c.Reason,
		Signature: c.Signature,
		PublicKey: c.PublicKey,
	}

	if c.ID != uuid.Nil {
		resp.ID = new(c.ID)
	}

	if c.IsSigned() {
		resp.Document = json.RawMessage(c.PayloadJSON)
		resp.IssuedAt = new(c.IssuedAt)
	}

	return resp
}

// certify issues a certificate from the all-time profile. It answers 202 and
// signs in the background, or waits with ?wait=true.
func (h *Handler) certify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.profiles.Profile(ctx, nil)
	if err != nil {
		request.WriteError(w, http.StatusInternalServerError, fmt.Errorf("computing risk profile: %w", err))
		return
	}

	id, err := h.identities.Get(ctx)
	if err != nil {
		request.WriteError(w, http.StatusInternalServerError, fmt.Errorf("loading identity: %w", err))
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		cert, err := h.certifier.Certify(ctx, profile, id)
		if err != nil {
			h.writeCertifyError(w, err)
			return
		}

		request.WriteJSON(w, http.StatusCreated, toResponse(cert))

		return
	}

	if err := h.certifier.Start(ctx, profile, id); err != nil {
		h.writeCertifyError(w, err)
		return
	}

	request.WriteJSON(w, http.StatusAccepted, toResponse(h.certifier.Current()))
}

func (h *Handler) writeCertifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, certificate.ErrInFlight), errors.Is(err, certificate.ErrNotReset):
		request.WriteError(w, http.StatusConflict, err)
	case errors.Is(err, certificate.ErrFilteredProfile):
		request.WriteError(w, http.StatusBadRequest, err)
	case errors.Is(err, certificate.ErrInsufficientData):
		request.WriteError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, certificate.ErrSigningFailure):
		request.WriteError(w, http.StatusBadGateway, err)
	default:
		slog.Error("failed to certify", "error", err)
		request.WriteError(w, http.StatusInternalServerError, err)
	}
}

func (h *Handler) current(w http.ResponseWriter, _ *http.Request) {
	request.WriteJSON(w, http.StatusOK, toResponse(h.certifier.Current()))
}

func (h *Handler) reset(w http.ResponseWriter, _ *http.Request) {
	if err := h.certifier.Reset(); err != nil {
		request.WriteError(w, http.StatusConflict, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) qr(w http.ResponseWriter, r *http.Request) {
	cert := h.certifier.Current()
	if !cert.IsSigned() {
		http.Error(w, "no signed certificate", http.StatusNotFound)
		return
	}

	scale := defaultQRScale
	if s := r.URL.Query().Get("scale"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxQRScale {
			http.Error(w, "invalid scale", http.StatusBadRequest)
			return
		}

		scale = n
	}

	sym, err := qr.Encode(cert.PayloadJSON)
	if err != nil {
		request.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")

	if err := sym.PNG(w, scale); err != nil {
		slog.Error("failed to write qr", "error", err)
	}
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		limit = min(n, maxHistoryLimit)
	}

	certs, err := h.certifier.History(r.Context(), limit)
	if err != nil {
		request.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	resp := make([]certificateResponse, 0, len(certs))
	for _, c := range certs {
		resp = append(resp, toResponse(c))
	}

	request.WriteJSON(w, http.StatusOK, resp)
}
