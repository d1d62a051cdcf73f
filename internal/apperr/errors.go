package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Erreurs sentinelles par classe de la taxonomie.
var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream")
)

// AppError porte un message utilisateur et le statut HTTP associé.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation : entrée manquante ou malformée (400).
func Validation(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

// NotFound : entité référencée absente (404).
func NotFound(resource string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: resource + " introuvable",
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Unauthorized : credential manquant ou invalide (401).
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden : authentifié mais pas autorisé (403).
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict : précondition d'état violée (409) — stock insuffisant,
// commande déjà payée, avis déjà déposé.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Upstream : échec d'un collaborateur externe (passerelle de paiement,
// fournisseur d'identité). Le statut remonté par l'amont peut être passé
// tel quel via status, sinon 502.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Code:    "UPSTREAM",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %v", ErrUpstream, cause),
	}
}

// StatusOf retourne le statut HTTP d'une erreur, 500 par défaut.
func StatusOf(err error) int {
	var app *AppError
	if errors.As(err, &app) {
		return app.Status
	}
	return http.StatusInternalServerError
}

// MessageOf retourne le message exposable d'une erreur.
func MessageOf(err error) string {
	var app *AppError
	if errors.As(err, &app) {
		return app.Message
	}
	return "erreur interne"
}
