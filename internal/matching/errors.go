package matching

import (
	"errors"

	"careermate/internal/domain"
)

var (
	// ErrInvalidTier aliases the domain error so callers can match either.
	ErrInvalidTier     = domain.ErrInvalidTier
	ErrUnknownQuestion = errors.New("unknown question")
	ErrInvalidScore    = errors.New("answer score out of range")
	ErrInvalidVector   = errors.New("label vector value out of range")
)
