package identity

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ledgercert/internal/http/request"
	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
)

type Handler struct {
	svc *identity.Service
}

func NewHandler(svc *identity.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.update)
}

type identityResponse struct {
	Name        string     `json:"name"`
	Occupation  string     `json:"occupation"`
	Description string     `json:"description,omitempty"`
	UID         string     `json:"uid"`
	Onboarded   bool       `json:"onboarded"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func toResponse(id identity.Identity) identityResponse {
	resp := identityResponse{
		Name:        id.Name,
		Occupation:  id.Occupation,
		Description: id.Description,
		UID:         id.UID(),
		Onboarded:   id.Onboarded,
	}

	if !id.UpdatedAt.IsZero() {
		resp.UpdatedAt = new(id.UpdatedAt)
	}

	return resp
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.Get(r.Context())
	if err != nil {
		request.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	request.WriteJSON(w, http.StatusOK, toResponse(id))
}

type updateRequest struct {
	Name        string `json:"name" validate:"max=100"`
	Occupation  string `json:"occupation" validate:"max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !request.Decode(w, r, &req) {
		return
	}

	id, err := h.svc.Update(r.Context(), identity.UpdateParams{
		Name:        req.Name,
		Occupation:  req.Occupation,
		Description: req.Description,
	})
	if err != nil {
		request.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	request.WriteJSON(w, http.StatusOK, toResponse(id))
}
