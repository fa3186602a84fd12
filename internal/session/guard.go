package session

import "slices"

// Verdict is the outcome of a route-guard check.
type Verdict int

const (
	// VerdictPending means session resolution is still in flight: render
	// nothing rather than flash-redirecting a stored session that has not
	// yet proven itself.
	VerdictPending Verdict = iota

	// VerdictAllow grants entry to the guarded view.
	VerdictAllow

	// VerdictRedirect denies entry; RedirectTo carries the target.
	VerdictRedirect
)

// Decision is a guard verdict with its redirect target when denied.
type Decision struct {
	Verdict    Verdict
	RedirectTo string
}

// Guard gates entry to protected views on authentication state and the
// resolved role.
type Guard struct {
	mgr       *Manager
	loginPath string
}

// NewGuard creates a guard that redirects anonymous callers to loginPath.
func NewGuard(mgr *Manager, loginPath string) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Guard{mgr: mgr, loginPath: loginPath}
}

// CanEnter checks whether the current session may enter a view restricted
// to the given roles. An empty required list admits any authenticated
// user. A wrong role redirects to the caller-specified fallback.
func (g *Guard) CanEnter(required []Role, fallback string) Decision {
	switch g.mgr.Status() {
	case StatusAuthenticating:
		return Decision{Verdict: VerdictPending}
	case StatusAnonymous:
		return Decision{Verdict: VerdictRedirect, RedirectTo: g.loginPath}
	}

	if len(required) == 0 || slices.Contains(required, g.mgr.CurrentRole()) {
		return Decision{Verdict: VerdictAllow}
	}

	return Decision{Verdict: VerdictRedirect, RedirectTo: fallback}
}
