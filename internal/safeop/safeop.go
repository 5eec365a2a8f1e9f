// Package safeop wraps fallible steps so one bad artifact degrades the
// run instead of aborting it.
package safeop

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Result reports how an operation concluded. Err is set only when the
// failure must stop the caller; recoverable failures are logged and
// surface as Success=false with a zero Value.
type Result[T any] struct {
	Value        T
	Success      bool
	FallbackUsed bool
	Err          error
}

// Do runs op and, when it fails, the fallback fb (which may be nil).
// A fallback that succeeds counts as success. When both fail the
// continueOnError flag decides between logging the failure and
// propagating it through Result.Err.
func Do[T any](log zerolog.Logger, name string, op, fb func() (T, error), continueOnError bool) Result[T] {
	v, err := op()
	if err == nil {
		return Result[T]{Value: v, Success: true}
	}
	log.Warn().Err(err).Str("op", name).Msg("operation failed")

	if fb != nil {
		fv, ferr := fb()
		if ferr == nil {
			log.Debug().Str("op", name).Msg("fallback succeeded")
			return Result[T]{Value: fv, Success: true, FallbackUsed: true}
		}
		log.Warn().Err(ferr).Str("op", name).Msg("fallback failed")
		err = fmt.Errorf("%s: fallback: %w", name, ferr)
	} else {
		err = fmt.Errorf("%s: %w", name, err)
	}

	if continueOnError {
		log.Error().Err(err).Str("op", name).Msg("continuing after failure")
		return Result[T]{FallbackUsed: fb != nil}
	}
	return Result[T]{FallbackUsed: fb != nil, Err: err}
}
