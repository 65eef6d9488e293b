package core

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Rejection kinds. Compare with errors.Is.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrNoOp               = errors.New("no-op")
	ErrMissingBalance     = errors.New("missing balance")
	ErrOwnershipMismatch  = errors.New("ownership mismatch")
	ErrWarehouseMismatch  = errors.New("warehouse mismatch")
	ErrDataIntegrity      = errors.New("data integrity violation")
	ErrEmptyShipment      = errors.New("empty shipment")

	// Boundary kinds raised by stores.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// RejectionError is a request-scoped refusal to perform an operation.
// Kind is one of the sentinel errors above; Message is for humans.
type RejectionError struct {
	Kind    error
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

func (e *RejectionError) Unwrap() error {
	return e.Kind
}

func reject(kind error, format string, args ...any) error {
	return &RejectionError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds an ErrNotFound rejection for a missing entity.
func NotFound(entity string, id int64) error {
	return reject(ErrNotFound, "%s %d not found", entity, id)
}

// Conflict builds an ErrConflict rejection, typically from a unique constraint.
func Conflict(format string, args ...any) error {
	return reject(ErrConflict, format, args...)
}

// KindOf returns the rejection kind carried by err, or nil when err is not a
// rejection (storage or programming errors).
func KindOf(err error) error {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Kind
	}
	for _, k := range []error{ErrNotFound, ErrConflict} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// formatIDs renders ids in ascending order, e.g. "[3, 7]".
func formatIDs(ids []int64) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
