package controllers

import (
	"net/http"
	"time"

	"github.com/jecaicedo27/toppingfrozen-backend/api/responses"
	"github.com/jecaicedo27/toppingfrozen-backend/api/validators"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/metrics"
	pkgerrors "github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

// MetricsSummary returns the zero-filled day-by-day report for a month or an
// explicit date range.
func MetricsSummary(svc *metrics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month, err := validators.ParseQueryInt(r, "month", 0, 1, 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		year, err := validators.ParseQueryInt(r, "year", 0, 2000, 2200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		startDate, err := validators.ParseQueryDate(r, "start_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		endDate, err := validators.ParseQueryDate(r, "end_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), metrics.RangeQuery{
			Month:     month,
			Year:      year,
			StartDate: startDate,
			EndDate:   endDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type metricsUpdateRequest struct {
	Date              string `json:"date" validate:"required"`
	ChatsStart        int    `json:"chats_start" validate:"min=0"`
	ChatsEnd          int    `json:"chats_end" validate:"min=0"`
	OrdersManualCount int    `json:"orders_manual_count" validate:"min=0"`
}

// MetricsUpdate upserts one day's manually tracked counters.
func MetricsUpdate(svc *metrics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload metricsUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := time.Parse("2006-01-02", payload.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be formatted YYYY-MM-DD"))
			return
		}

		row, err := svc.Update(r.Context(), metrics.UpdateInput{
			Date:              date,
			ChatsStart:        payload.ChatsStart,
			ChatsEnd:          payload.ChatsEnd,
			OrdersManualCount: payload.OrdersManualCount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
