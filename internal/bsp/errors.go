package bsp

import "github.com/aukilabs/go-tooling/pkg/errors"

const (
	ErrTypeBoundsExceeded = "bounds_exceeded"
	ErrTypeTreeNotBuilt   = "tree_not_built"
	ErrTypeTreeSealed     = "tree_sealed"
	ErrTypeInvalidNodes   = "invalid_nodes"
)

func errTreeNotBuilt() error {
	return errors.New("tree queried before apply").WithType(ErrTypeTreeNotBuilt)
}

func errTreeSealed() error {
	return errors.New("tree is sealed").WithType(ErrTypeTreeSealed)
}
