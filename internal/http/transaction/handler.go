package transaction

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgercert/internal/http/request"
	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	Amount decimal.Decimal  `json:"amount"`
	Kind   transaction.Kind `json:"kind" validate:"required,oneof=INCOME EXPENSE"`
	// OccurredAt is epoch milliseconds.
	OccurredAt   int64  `json:"occurred_at" validate:"gt=0"`
	Category     string `json:"category" validate:"max=100"`
	Counterparty string `json:"counterparty" validate:"max=200"`
	Verified     bool   `json:"verified"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !request.Decode(w, r, &req) {
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		Amount:       req.Amount,
		Kind:         req.Kind,
		OccurredAt:   transaction.FromMillis(req.OccurredAt),
		Category:     req.Category,
		Counterparty: req.Counterparty,
		Verified:     req.Verified,
	})
	if err != nil {
		if errors.Is(err, transaction.ErrMalformed) {
			request.WriteError(w, http.StatusUnprocessableEntity, err)
			return
		}

		request.WriteError(w, http.StatusInternalServerError, err)

		return
	}

	request.WriteJSON(w, http.StatusCreated, ToResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := transaction.ListFilter{}

	if s := r.URL.Query().Get("kind"); s != "" {
		filter.Kind = new(transaction.Kind(s))
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		request.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	request.WriteJSON(w, http.StatusOK, ToResponseList(txs))
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	request.WriteJSON(w, http.StatusOK, ToResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
