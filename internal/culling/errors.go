package culling

import (
	"culling3d/internal/engine"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	// ErrTypeValidationFailure marks a source that no strategy can cull.
	// The source is simply left out of dynamic culling.
	ErrTypeValidationFailure = "validation_failure"

	// ErrTypeBoundsUnavailable marks bounds requested before any geometry
	// was discovered. Callers retry later or keep the target visible.
	ErrTypeBoundsUnavailable = "bounds_unavailable"
)

func validationFailure(reason string, owner *engine.GameObject) error {
	if owner == nil {
		return errors.New(reason).WithType(ErrTypeValidationFailure)
	}
	return errors.New(reason).
		WithType(ErrTypeValidationFailure).
		WithTag("object", owner.Name)
}

func boundsUnavailable(reason string, owner *engine.GameObject) error {
	if owner == nil {
		return errors.New(reason).WithType(ErrTypeBoundsUnavailable)
	}
	return errors.New(reason).
		WithType(ErrTypeBoundsUnavailable).
		WithTag("object", owner.Name)
}
