package solution

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/eringen/solnotes/content"
)

// RetryPolicy bounds how often a storage step is attempted. The wait before
// attempt n+1 is Delay*n.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// retryable reports whether another attempt could change the outcome.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	var p *permanentError
	if errors.As(err, &p) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if goerrors.IsCategory(err, goerrors.CategoryValidation) || errors.Is(err, ErrMalformed) {
		return false
	}
	switch content.KindOf(err) {
	case content.KindNotFound, content.KindUnauthorized:
		return false
	}
	return true
}

// retry runs fn until it succeeds, fails permanently, or the attempts run
// out. The last error is returned.
func (s *Service) retry(ctx context.Context, op string, fn func(attempt int) error) error {
	policy := s.cfg.Retry.withDefaults()

	var err error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		err = fn(attempt)
		if err == nil || !retryable(err) || attempt == policy.Attempts {
			return unwrapPermanent(err)
		}

		wait := policy.Delay * time.Duration(attempt)
		s.logger.Warn("storage step failed, retrying",
			"op", op, "attempt", attempt, "wait", wait.String(), "error", err)
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return unwrapPermanent(err)
		case <-timer.C:
		}
	}
	return unwrapPermanent(err)
}
