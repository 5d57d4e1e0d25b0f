package risk

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ledgercert/internal/http/request"
	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

type Handler struct {
	svc *risk.Service
}

func NewHandler(svc *risk.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.profile)
	r.Get("/months", h.months)
}

type monthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type counterpartyAmount struct {
	Counterparty string  `json:"counterparty"`
	Amount       float64 `json:"amount"`
}

type profileResponse struct {
	Period                     string               `json:"period"`
	TotalIncome                float64              `json:"total_income"`
	TotalExpense               float64              `json:"total_expense"`
	NetSavings                 float64              `json:"net_savings"`
	TransactionVelocity        int                  `json:"transaction_velocity"`
	ProfitMarginPercent        int                  `json:"profit_margin_percent"`
	VerifiedIncomeRatioPercent int                  `json:"verified_income_ratio_percent"`
	StabilityScore             float64              `json:"stability_score"`
	StabilityLabel             string               `json:"stability_label"`
	PeakMonths                 []string             `json:"peak_months"`
	MonthlyTrend               []monthAmount        `json:"monthly_trend"`
	TopCounterparties          []counterpartyAmount `json:"top_counterparties"`
	LoanEligibilityAmount      int64                `json:"loan_eligibility_amount"`
	MonthlySurplus             float64              `json:"monthly_surplus"`
}

func toResponse(p risk.Profile) profileResponse {
	resp := profileResponse{
		Period:                     p.Period,
		TotalIncome:                p.TotalIncome,
		TotalExpense:               p.TotalExpense,
		NetSavings:                 p.NetSavings,
		TransactionVelocity:        p.TransactionVelocity,
		ProfitMarginPercent:        p.ProfitMarginPercent,
		VerifiedIncomeRatioPercent: p.VerifiedIncomeRatioPercent,
		StabilityScore:             p.StabilityScore,
		StabilityLabel:             p.StabilityLabel,
		PeakMonths:                 append([]string{}, p.PeakMonths...),
		MonthlyTrend:               make([]monthAmount, 0, len(p.MonthlyTrend)),
		TopCounterparties:          make([]counterpartyAmount, 0, len(p.TopCounterparties)),
		LoanEligibilityAmount:      p.LoanEligibilityAmount,
		MonthlySurplus:             p.MonthlySurplus,
	}

	for _, m := range p.MonthlyTrend {
		resp.MonthlyTrend = append(resp.MonthlyTrend, monthAmount{Month: m.Month, Amount: m.Amount})
	}

	for _, c := range p.TopCounterparties {
		resp.TopCounterparties = append(resp.TopCounterparties, counterpartyAmount{
			Counterparty: c.Counterparty,
			Amount:       c.Amount,
		})
	}

	return resp
}

// profile serves the all-time profile, or the profile of ?month=Jan%202026.
func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	var filter *risk.Month

	if s := r.URL.Query().Get("month"); s != "" {
		m, err := risk.ParseMonth(s)
		if err != nil {
			request.WriteError(w, http.StatusBadRequest, err)
			return
		}

		filter = &m
	}

	p, err := h.svc.Profile(r.Context(), filter)
	if err != nil {
		if errors.Is(err, transaction.ErrMalformed) {
			request.WriteError(w, http.StatusUnprocessableEntity, err)
			return
		}

		request.WriteError(w, http.StatusInternalServerError, err)

		return
	}

	request.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) months(w http.ResponseWriter, r *http.Request) {
	months, err := h.svc.AvailableMonths(r.Context())
	if err != nil {
		request.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	labels := make([]string, 0, len(months))
	for _, m := range months {
		labels = append(labels, m.String())
	}

	request.WriteJSON(w, http.StatusOK, labels)
}
