package session

import (
	"context"
	"fmt"

	"github.com/glennmatthews/cot/errors"
)

// Warning is a non-fatal condition surfaced to the caller for confirmation
// rather than returned as an error: platform bounds violations, manifest
// mismatches, and disk-space shortfalls (spec.md section 7).
type Warning struct {
	// Message is the human-readable warning text.
	Message string
	// ForceOK reports whether --force-equivalent auto-confirmation is
	// sufficient to proceed, as opposed to a warning that always blocks
	// without an explicit interactive answer.
	ForceOK bool
}

// Confirmer asks the caller whether to proceed past a Warning. Returning
// true proceeds; false aborts the operation that raised it. This is the
// "confirmation callback" spec.md section 1 describes as an external UI
// collaborator - the core only invokes it, never implements a prompt.
type Confirmer func(w Warning) bool

// AlwaysConfirm implements Confirmer for --force-equivalent behavior.
func AlwaysConfirm(Warning) bool { return true }

// NeverConfirm implements Confirmer for strict/non-interactive callers that
// want any warning to abort.
func NeverConfirm(Warning) bool { return false }

// Session is the explicit value threaded through edit operations in place
// of the package-global logging and helper-result caches the original COT
// used, per spec.md section 9.
type Session struct {
	Logger    Logger
	Confirm   Confirmer
	Force     bool
	Workspace *Workspace

	// helperCache memoizes the output of capability probes (e.g. "is
	// qemu-img installed") for the lifetime of the Session, mirroring the
	// original's helper-tool output cache without a package-level global.
	helperCache map[string]string
}

// New creates a Session with the given logger and confirmer. If force is
// true, Confirm is ignored and every warning auto-confirms.
func New(logger Logger, confirm Confirmer, force bool) *Session {
	if logger == nil {
		logger = NopLogger{}
	}
	if force {
		confirm = AlwaysConfirm
	} else if confirm == nil {
		confirm = NeverConfirm
	}
	return &Session{
		Logger:      logger,
		Confirm:     confirm,
		Force:       force,
		helperCache: map[string]string{},
	}
}

// Warn routes a warning through the Session's Confirmer, auto-approving
// when Force is set. It returns whether the caller should proceed.
func (s *Session) Warn(format string, a ...interface{}) bool {
	w := Warning{Message: fmt.Sprintf(format, a...), ForceOK: true}
	s.Logger.User("warning: %s", w.Message)
	return s.Confirm(w)
}

// CachedHelperResult returns a memoized helper-tool probe result and
// whether it was present.
func (s *Session) CachedHelperResult(key string) (string, bool) {
	v, ok := s.helperCache[key]
	return v, ok
}

// CacheHelperResult stores a helper-tool probe result for reuse within the
// Session's lifetime.
func (s *Session) CacheHelperResult(key, value string) {
	s.helperCache[key] = value
}

// WithCancel returns a context that CheckCancelled will report as
// cancelled once cancel is invoked. No operation in this module calls
// CheckCancelled; a cancelled context has no effect unless the caller
// checks it between operations.
func WithCancel(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(parent)
}

// CheckCancelled returns a Cancelled error if ctx has been cancelled, else
// nil. Call at coarse operation boundaries, never mid-mutation.
func CheckCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.New(errors.Cancelled, "operation cancelled")
	default:
		return nil
	}
}
