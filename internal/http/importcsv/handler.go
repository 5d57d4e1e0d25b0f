package importcsv

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ledgercert/internal/http/request"
	txHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/transaction"
	"github.com/MrJamesThe3rd/ledgercert/internal/importer"
	"github.com/MrJamesThe3rd/ledgercert/internal/importer/statement"
	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importResponse struct {
	Imported     int                  `json:"imported"`
	Duplicates   int                  `json:"duplicates"`
	Transactions []txHandler.Response `json:"transactions"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	bank := importer.Bank(r.FormValue("bank"))
	if bank == "" {
		http.Error(w, "bank field is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(r.Context(), bank, file)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, statement.ErrUnknownFormat) {
			status = http.StatusUnprocessableEntity
		}

		request.WriteError(w, status, err)

		return
	}

	result, err := h.txSvc.ImportBatch(r.Context(), params)
	if err != nil {
		if errors.Is(err, transaction.ErrMalformed) {
			request.WriteError(w, http.StatusUnprocessableEntity, err)
			return
		}

		request.WriteError(w, http.StatusInternalServerError, err)

		return
	}

	request.WriteJSON(w, http.StatusCreated, importResponse{
		Imported:     len(result.Imported),
		Duplicates:   len(result.Duplicates),
		Transactions: txHandler.ToResponseList(result.Imported),
	})
}
