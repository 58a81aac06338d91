// Package locator finds the external editor's top-level window by polling
// the window system.
//
// The external application's windows cannot be observed through callbacks
// from another process, so the locator enumerates visible top-level windows
// on a fixed interval and applies a two-pass match: first a window owned by
// the launched PID whose title contains the search text, then any window
// whose title contains it. The fallback covers launchers that hand off to an
// already running instance under a different PID.
package locator

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/window"
)

// Criteria selects a window. Title is matched as a case-insensitive
// substring. A zero PID disables the precise pass.
type Criteria struct {
	Title string
	PID   int
}

func (c Criteria) titleMatches(title string) bool {
	if title == "" {
		return false
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(c.Title))
}

// Pass identifies which matching rule selected a window.
type Pass int

const (
	PassNone Pass = iota
	PassPrecise
	PassFallback
)

func (p Pass) String() string {
	switch p {
	case PassPrecise:
		return "precise"
	case PassFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Candidate is a window that satisfied one of the passes.
type Candidate struct {
	window.Info
	Pass Pass
}

// Classify returns every window in infos that matches c, in enumeration
// order, tagged with the pass it satisfies.
func Classify(infos []window.Info, c Criteria) []Candidate {
	var out []Candidate
	for _, info := range infos {
		if !c.titleMatches(info.Title) {
			continue
		}
		pass := PassFallback
		if c.PID != 0 && info.PID == c.PID {
			pass = PassPrecise
		}
		out = append(out, Candidate{Info: info, Pass: pass})
	}
	return out
}

// Match applies the two-pass policy to a single enumeration. A precise
// match always wins over a fallback match, regardless of order.
func Match(infos []window.Info, c Criteria) (Candidate, bool) {
	var fallback *Candidate
	candidates := Classify(infos, c)
	for i := range candidates {
		if candidates[i].Pass == PassPrecise {
			return candidates[i], true
		}
		if fallback == nil {
			fallback = &candidates[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Candidate{}, false
}

// Policy bounds the polling loop.
type Policy struct {
	// InitialDelay is waited once before the first enumeration.
	InitialDelay time.Duration
	// Interval separates consecutive enumerations.
	Interval time.Duration
	// MaxAttempts is the total number of enumerations. Values below 1
	// are treated as 1.
	MaxAttempts int
}

// DefaultPolicy tolerates a multi-second cold start of the editor.
func DefaultPolicy() Policy {
	return Policy{
		InitialDelay: 2 * time.Second,
		Interval:     500 * time.Millisecond,
		MaxAttempts:  20,
	}
}

// Budget returns the worst-case wait implied by the policy.
func (p Policy) Budget() time.Duration {
	attempts := max(p.MaxAttempts, 1)
	return p.InitialDelay + time.Duration(attempts-1)*p.Interval
}

// Locator polls a window.Backend for a matching window.
type Locator struct {
	backend window.Backend
	policy  Policy
	logger  *logging.Logger
}

// New creates a Locator. A nil logger discards output.
func New(backend window.Backend, policy Policy, logger *logging.Logger) *Locator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Locator{
		backend: backend,
		policy:  policy,
		logger:  logger.WithPhase("locate"),
	}
}

// Policy returns the polling policy in effect.
func (l *Locator) Policy() Policy {
	return l.policy
}

// Scan performs a single enumeration and returns every candidate.
func (l *Locator) Scan(c Criteria) ([]Candidate, error) {
	infos, err := l.backend.TopLevel()
	if err != nil {
		return nil, err
	}
	return Classify(infos, c), nil
}

// Find polls until a window matches c or the attempt budget is spent.
// Enumeration errors count as a failed attempt. Waiting happens on the
// calling goroutine; only enumeration touches the backend.
func (l *Locator) Find(ctx context.Context, c Criteria) (Candidate, error) {
	if strings.TrimSpace(c.Title) == "" {
		return Candidate{}, errors.NewValidationError("window title criteria cannot be empty").WithField("title")
	}

	if err := sleep(ctx, l.policy.InitialDelay); err != nil {
		return Candidate{}, errors.Wrap(errors.ErrCanceled, "waiting for external window")
	}

	attempts := max(l.policy.MaxAttempts, 1)
	var b backoff.BackOff = backoff.NewConstantBackOff(l.policy.Interval)
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	var (
		found Candidate
		tries int
	)
	op := func() error {
		tries++
		infos, err := l.backend.TopLevel()
		if err != nil {
			l.logger.Debug("window enumeration failed", "attempt", tries, "error", err)
			return err
		}
		cand, ok := Match(infos, c)
		if !ok {
			return errors.ErrWindowNotFound
		}
		found = cand
		return nil
	}

	err := backoff.Retry(op, b)
	if err == nil {
		l.logger.Info("external window found",
			"window", found.Handle.String(),
			"pid", found.PID,
			"title", found.Title,
			"pass", found.Pass.String(),
			"attempt", tries)
		return found, nil
	}

	if ctx.Err() != nil {
		return Candidate{}, errors.Wrap(errors.ErrCanceled, "waiting for external window")
	}

	l.logger.Warn("external window not found",
		"title", c.Title,
		"pid", c.PID,
		"attempts", tries,
		"budget", l.policy.Budget().String())
	timeout := errors.NewTimeoutError("locate window", l.policy.Budget()).WithCause(errors.ErrWindowNotFound)
	return Candidate{}, errors.NewWindowError("no window titled like "+c.Title, timeout).
		WithPhase("locate").
		WithRetryable(true)
}

// sleep waits d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
