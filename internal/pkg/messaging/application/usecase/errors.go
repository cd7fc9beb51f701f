package usecase

import (
	"context"
	"errors"
	"fmt"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
)

// ErrPersistence indicates an infrastructure/store failure inside a use case.
var ErrPersistence = errors.New("messaging use case persistence error")

// wrapStoreErr passes domain sentinels through untouched, maps deadline
// expiry to ErrTimeout and wraps anything else as a persistence failure so
// callers never see raw driver errors.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, messaging.ErrValidation),
		errors.Is(err, messaging.ErrPermissionDenied),
		errors.Is(err, messaging.ErrNotFound),
		errors.Is(err, messaging.ErrConflict):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", messaging.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
