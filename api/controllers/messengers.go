package controllers

import (
	"net/http"
	"time"

	"github.com/jecaicedo27/toppingfrozen-backend/api/middleware"
	"github.com/jecaicedo27/toppingfrozen-backend/api/responses"
	"github.com/jecaicedo27/toppingfrozen-backend/api/validators"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/messengers"
	pkgerrors "github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/metrics"
)

// MessengerOrders lists the authenticated messenger's active assignments.
func MessengerOrders(svc *messengers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListAssigned(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type assignRequest struct {
	MessengerID uint64 `json:"messenger_id" validate:"required,min=1"`
}

// LogisticsAssign hands an order to a messenger.
func LogisticsAssign(svc *messengers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Assign(r.Context(), orderID, payload.MessengerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// MessengerAccept acknowledges an assignment.
func MessengerAccept(svc *messengers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Accept(r.Context(), orderID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// MessengerReject returns an assignment to the pool.
func MessengerReject(svc *messengers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Reject(r.Context(), orderID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// MessengerStart moves an accepted assignment out for delivery.
func MessengerStart(svc *messengers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Start(r.Context(), orderID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// MessengerComplete finishes a delivery with a photo of the handed-over
// product.
func MessengerComplete(svc *messengers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		order, err := svc.Complete(r.Context(), orderID, middleware.UserIDFromContext(r.Context()), formFile(r, "product_photo"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// MessengerFail records a failed delivery attempt.
func MessengerFail(svc *messengers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Fail(r.Context(), orderID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// MessengersReconcile repairs legacy assignment columns into the canonical
// foreign key.
func MessengersReconcile(rec *messengers.Reconciler, jobs *metrics.JobMetrics, logg *logger.Logger) http.HandlerFunc {
	const jobName = "messenger_reconcile"
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		report, err := rec.Run(r.Context())
		if jobs != nil {
			jobs.ObserveDuration(jobName, time.Since(start))
			if err != nil {
				jobs.IncFailure(jobName)
			} else {
				jobs.IncSuccess(jobName)
			}
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
