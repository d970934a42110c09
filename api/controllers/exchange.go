package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lamnguyendev/talentbridge-backend/api/responses"
	"github.com/lamnguyendev/talentbridge-backend/internal/exchange"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
	"github.com/lamnguyendev/talentbridge-backend/pkg/logger"
)

type exchangeRateResponse struct {
	CurrencyCode string `json:"currency_code"`
	RateVND      string `json:"rate_vnd"`
}

// ExchangeRate returns the cached reference rate used to prefill contract
// pricing forms.
func ExchangeRate(source exchange.RateSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "currency")))
		if code == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "currency code is required"))
			return
		}
		rate, err := source.Rate(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, exchangeRateResponse{
			CurrencyCode: code,
			RateVND:      rate.String(),
		})
	}
}
