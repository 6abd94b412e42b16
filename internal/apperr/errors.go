// Package apperr defines the error taxonomy shared by the hierarchy, entry,
// filter and user services. Every failure carries a Kind so the transport
// layer can map it to a status without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation             Kind = "validation"
	KindPermissionDenied       Kind = "permission_denied"
	KindDuplicateName          Kind = "duplicate_name"
	KindUnknownFloor           Kind = "unknown_floor"
	KindNotFound               Kind = "not_found"
	KindAmbiguousCounterFilter Kind = "ambiguous_counter_filter"
	KindInUse                  Kind = "in_use"
	KindExternalService        Kind = "external_service"
)

// Error is the concrete error type returned by the services.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err != nil:
		return e.Err.Error()
	case e.Msg == "":
		return string(e.Kind)
	case e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the bare sentinels below, so errors.Is(err, ErrInUse) holds for
// any *Error of kind KindInUse.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrPermissionDenied       = &Error{Kind: KindPermissionDenied}
	ErrDuplicateName          = &Error{Kind: KindDuplicateName}
	ErrUnknownFloor           = &Error{Kind: KindUnknownFloor}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrAmbiguousCounterFilter = &Error{Kind: KindAmbiguousCounterFilter}
	ErrInUse                  = &Error{Kind: KindInUse}
	ErrExternalService        = &Error{Kind: KindExternalService}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error { return newf(KindValidation, format, args...) }

func PermissionDenied(format string, args ...any) error {
	return newf(KindPermissionDenied, format, args...)
}

func DuplicateName(format string, args ...any) error {
	return newf(KindDuplicateName, format, args...)
}

func UnknownFloor(floorID string) error {
	return newf(KindUnknownFloor, "floor %q not found", floorID)
}

func NotFound(format string, args ...any) error { return newf(KindNotFound, format, args...) }

func AmbiguousCounterFilter() error {
	return newf(KindAmbiguousCounterFilter, "select a floor before filtering by counter")
}

func InUse(format string, args ...any) error { return newf(KindInUse, format, args...) }

// External wraps a failure of the persistence or auth collaborator. The
// underlying message stays visible in Error().
func External(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindExternalService, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// HTTPStatus maps a kind to the status the API answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindAmbiguousCounterFilter:
		return http.StatusBadRequest
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindDuplicateName, KindInUse:
		return http.StatusConflict
	case KindUnknownFloor, KindNotFound:
		return http.StatusNotFound
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
