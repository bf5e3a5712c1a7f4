package controller

import (
	"errors"
	"fmt"
	"net/http"
	"shoptogether/pkg/logger"
	"shoptogether/pkg/serrors"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

const internalServerError = "Internal Server Error"

// Stack renders the backtrace of err. Panics carry the stack of the panicking
// goroutine, errors reported by a stage or route the stack captured there. The
// wrapping frames of go-faster errors are printed before it.
func Stack(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe.Error() + "\n" + string(pe.Stack)
	}

	var te *TracedError
	if errors.As(err, &te) {
		return fmt.Sprintf("%+v", te.Err) + "\n" + string(te.Stack)
	}

	return fmt.Sprintf("%+v", err)
}

// ErrorResponder returns the terminal error handler. Every error becomes a 500
// with the error description as message. The stack is included in the body only
// when exposeStack is set, it is always logged.
func ErrorResponder(exposeStack bool) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		stack := Stack(err)
		logger.Error(r.Context(), "unhandled request error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("error", err.Error()),
			zap.String("stack", stack),
		)

		// headers are gone already, the client gets whatever was written
		if Written(w) {
			return
		}

		var e jx.Encoder
		e.ObjStart()
		e.FieldStart("error")
		e.Str(internalServerError)
		e.FieldStart("message")
		e.Str(err.Error())
		if exposeStack {
			e.FieldStart("stack")
			e.Str(stack)
		}
		e.ObjEnd()

		writeRaw(w, http.StatusInternalServerError, e.Bytes())
	}
}

// NotFoundJSON writes the 404 payload echoing the request path and method.
func NotFoundJSON(w http.ResponseWriter, r *http.Request) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("error")
	e.Str("API endpoint not found")
	e.FieldStart("path")
	e.Str(r.URL.Path)
	e.FieldStart("method")
	e.Str(r.Method)
	e.ObjEnd()

	writeRaw(w, http.StatusNotFound, e.Bytes())
}

// StatusOf maps client-facing error kinds to an HTTP status. It returns 0 for
// errors that must reach the terminal error handler.
func StatusOf(err error) int {
	switch serrors.KindOf(err) {
	case serrors.ErrBadRequest:
		return http.StatusBadRequest
	case serrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case serrors.ErrForbidden:
		return http.StatusForbidden
	case serrors.ErrNotFound:
		return http.StatusNotFound
	case serrors.ErrConflict:
		return http.StatusConflict
	case serrors.ErrRateLimited:
		return http.StatusTooManyRequests
	default:
		return 0
	}
}

// WriteClientError writes {"error": msg} for client-facing errors and reports
// whether it did. Other errors are left to the caller.
func WriteClientError(w http.ResponseWriter, err error) bool {
	status := StatusOf(err)
	if status == 0 {
		return false
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("error")
	e.Str(serrors.PublicMessage(err))
	e.ObjEnd()

	writeRaw(w, status, e.Bytes())

	return true
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
