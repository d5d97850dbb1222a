package controllers

import (
	"net/http"

	"github.com/jecaicedo27/toppingfrozen-backend/api/responses"
	"github.com/jecaicedo27/toppingfrozen-backend/api/validators"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/auth"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

// AuthLogin authenticates a username/password pair and returns a JWT.
func AuthLogin(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload auth.LoginInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
