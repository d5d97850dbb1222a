package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/jecaicedo27/toppingfrozen-backend/api/middleware"
	"github.com/jecaicedo27/toppingfrozen-backend/api/responses"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/pos"
	pkgerrors "github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

// multipart bodies are parsed with a fixed in-memory budget; larger files
// spill to temp disk.
const multipartMemoryLimit = 10 << 20

func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// POSUploadEvidence receives delivery evidence photos and settles the order
// according to its payment method. The order id travels in the form because
// the POS client submits everything as one multipart request.
func POSUploadEvidence(svc *pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		orderID, err := strconv.ParseUint(strings.TrimSpace(r.FormValue("order_id")), 10, 64)
		if err != nil || orderID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order_id must be a positive integer"))
			return
		}

		result, err := svc.UploadEvidenceAndDeliver(r.Context(), pos.UploadEvidenceInput{
			OrderID:      orderID,
			ActorID:      middleware.UserIDFromContext(r.Context()),
			ProductPhoto: formFile(r, "product_photo"),
			PaymentPhoto: formFile(r, "payment_evidence"),
			CashPhoto:    formFile(r, "cash_photo"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// POSPendingTransfers lists orders waiting in wallet review.
func POSPendingTransfers(svc *pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.PendingTransfers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// POSApproveTransfer approves a transfer payment under wallet review.
func POSApproveTransfer(svc *pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ApproveTransfer(r.Context(), orderID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// POSRejectTransfer sends a reviewed transfer payment to special handling.
func POSRejectTransfer(svc *pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RejectTransfer(r.Context(), orderID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
