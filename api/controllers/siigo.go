package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jecaicedo27/toppingfrozen-backend/api/responses"
	"github.com/jecaicedo27/toppingfrozen-backend/api/validators"
	siigosvc "github.com/jecaicedo27/toppingfrozen-backend/internal/siigo"
	pkgerrors "github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

// SiigoCustomerByNIT looks up a SIIGO customer and their open balance.
func SiigoCustomerByNIT(svc *siigosvc.ConsultaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nit := strings.TrimSpace(chi.URLParam(r, "nit"))
		if nit == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "nit is required"))
			return
		}

		info, err := svc.CustomerByNIT(r.Context(), nit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}

// SiigoSearchCustomers searches SIIGO customers by name or identification.
func SiigoSearchCustomers(svc *siigosvc.ConsultaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := strings.TrimSpace(r.URL.Query().Get("search"))
		results, err := svc.Search(r.Context(), term)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

// SiigoConnection reports SIIGO connectivity, cached briefly.
func SiigoConnection(svc *siigosvc.ConsultaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Status(r.Context()))
	}
}

// SiigoSettings returns the integration state for the admin screen.
func SiigoSettings(svc *siigosvc.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.Settings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// SiigoUpdateCredentials stores new API credentials.
func SiigoUpdateCredentials(svc *siigosvc.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload siigosvc.UpdateCredentialsInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UpdateCredentials(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

type siigoToggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// SiigoToggle enables or disables the integration.
func SiigoToggle(svc *siigosvc.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload siigoToggleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetEnabled(r.Context(), *payload.Enabled); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"enabled": *payload.Enabled})
	}
}

// SiigoTestConnection authenticates against SIIGO with stored credentials.
func SiigoTestConnection(svc *siigosvc.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.TestConnection(r.Context()))
	}
}

// SiigoDeleteCredentials removes stored credentials and disables the
// integration.
func SiigoDeleteCredentials(svc *siigosvc.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteCredentials(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
