package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"card-ledger/internal/errors"
)

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := Response{Data: data}
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")

	statusCode := appErr.HTTPStatus()
	errResponse := Error{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}

	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Error: &errResponse})
}

// writeServiceError maps any error coming out of the service layer.
func writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		writeError(w, appErr)
		return
	}
	writeError(w, errors.NewAppError(errors.InternalError, "an unexpected error occurred").WithDetails(err.Error()))
}

// accountIDVar extracts and parses the {account_id} path variable.
func accountIDVar(r *http.Request) (uuid.UUID, *errors.AppError) {
	id, err := uuid.Parse(mux.Vars(r)["account_id"])
	if err != nil {
		return uuid.Nil, errors.NewAppError(errors.InvalidInput, "invalid account_id format")
	}
	return id, nil
}

type contextKey string

// AccountIDKey carries the authenticated account ID through the request
// context, set by the server's auth middleware.
const AccountIDKey contextKey = "account_id"

// WithAccountID returns a context carrying the authenticated account ID.
func WithAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, AccountIDKey, id)
}

// authenticatedAccount returns the account ID the middleware attached to
// the request.
func authenticatedAccount(r *http.Request) (uuid.UUID, *errors.AppError) {
	id, ok := r.Context().Value(AccountIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, errors.NewAppError(errors.InvalidCredentials, "authentication required")
	}
	return id, nil
}
