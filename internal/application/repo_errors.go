package application

import (
	"errors"
	"fmt"

	"github.com/example/placement-portal/internal/persistence"
)

// mapRepoError translates persistence failures into service sentinels.
// Duplicate key errors are left to the caller, which knows what was duplicated.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, persistence.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, persistence.ErrDuplicate)
}
