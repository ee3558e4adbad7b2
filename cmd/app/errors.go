package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/traveltales/journal/internal/common"
	"github.com/traveltales/journal/internal/userservice"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method  = r.Method
		url     = r.URL.RequestURI()
		message = err.Error()
	)

	app.logger.Error(message, slog.String("method", method), slog.String("url", url))
}

func (app *application) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	err := app.writeJSON(w, status, envelope{"error": message}, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.writeErrorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) badRequestErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusNotFound, "resource not found")
}

func (app *application) failedValidationErrorResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.writeErrorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (app *application) invalidCredentialsErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusUnauthorized, "invalid authentication credentials")
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.writeErrorResponse(w, r, http.StatusUnauthorized, "invalid or missing authentication token")
}

func (app *application) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusUnauthorized, "you must be authenticated to access this resource")
}

func (app *application) methodNotAllowedErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("the %s method is not supported for this resource", r.Method))
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

// upstreamErrorResponse reports a resource API failure with the message
// and status the transport classified it with.
func (app *application) upstreamErrorResponse(w http.ResponseWriter, r *http.Request, apiErr *common.APIError) {
	app.logError(r, apiErr)
	app.writeErrorResponse(w, r, http.StatusBadGateway, map[string]any{
		"message": apiErr.Message,
		"status":  apiErr.Status,
	})
}

// errorResponse maps the errors every service call can return. Handlers
// match their own sentinels first and fall through to this.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr common.ValidationError
		apiErr        *common.APIError
	)

	switch {
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	case errors.Is(err, userservice.ErrNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		app.notFoundErrorResponse(w, r)
	case errors.As(err, &apiErr):
		app.upstreamErrorResponse(w, r, apiErr)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
