// Package rest exposes the board engine over HTTP for the web shell. It is
// a thin layer: decode, call the engine, render. All domain rules live in
// the engine packages.
package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"

	"github.com/courseflow/board/internal"
)

const otelName = "github.com/courseflow/board/internal/rest"

// ErrorResponse represents a response containing an error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

func renderErrorResponse(ctx context.Context, w http.ResponseWriter, r *http.Request, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	status := http.StatusInternalServerError

	var ierr *internal.Error
	if !errors.As(err, &ierr) {
		resp.Error = "internal error"
	} else {
		switch ierr.Code() {
		case internal.ErrorCodeNotFound:
			status = http.StatusNotFound
		case internal.ErrorCodeInvalidArgument:
			status = http.StatusBadRequest
		case internal.ErrorCodeUnauthorized:
			status = http.StatusUnauthorized
		}
	}

	if err != nil {
		_, span := otel.Tracer(otelName).Start(ctx, "renderErrorResponse")
		defer span.End()

		span.RecordError(err)
	}

	renderResponse(w, r, resp, status)
}

func renderResponse(w http.ResponseWriter, r *http.Request, res interface{}, status int) {
	render.Status(r, status)
	render.JSON(w, r, res)
}
