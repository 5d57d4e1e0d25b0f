package counterparty

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ledgercert/internal/counterparty"
	"github.com/MrJamesThe3rd/ledgercert/internal/http/request"
)

type Handler struct {
	svc *counterparty.Service
}

func NewHandler(svc *counterparty.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/resolve", h.resolve)
	r.Post("/", h.learn)
}

type resolveResponse struct {
	RawDescription string `json:"raw_description"`
	Counterparty   string `json:"counterparty"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		http.Error(w, "raw_description query parameter is required", http.StatusBadRequest)
		return
	}

	name, err := h.svc.Resolve(r.Context(), rawDesc)
	if err != nil {
		request.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	request.WriteJSON(w, http.StatusOK, resolveResponse{
		RawDescription: rawDesc,
		Counterparty:   name,
	})
}

type learnRequest struct {
	RawPattern   string `json:"raw_pattern" validate:"required,max=200"`
	Counterparty string `json:"counterparty" validate:"required,max=200"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !request.Decode(w, r, &req) {
		return
	}

	if err := h.svc.Learn(r.Context(), req.RawPattern, req.Counterparty); err != nil {
		if errors.Is(err, counterparty.ErrEmptyMapping) {
			request.WriteError(w, http.StatusBadRequest, err)
			return
		}

		request.WriteError(w, http.StatusInternalServerError, err)

		return
	}

	w.WriteHeader(http.StatusCreated)
}
