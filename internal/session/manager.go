package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gridwatt/chargectl/internal/api"
)

// Status is the lifecycle state of the session.
type Status int

const (
	// StatusAnonymous means no session is held.
	StatusAnonymous Status = iota

	// StatusAuthenticating means a login or the startup identity probe is
	// in flight and the session is not yet resolved either way.
	StatusAuthenticating

	// StatusAuthenticated means a session is held and its tokens are
	// readable.
	StatusAuthenticated

	// StatusRenewing means a token renewal is in flight. The previously
	// held tokens remain valid for reads, so consumers are never blocked
	// on a refresh.
	StatusRenewing
)

// User is the profile record returned by the identity endpoint.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Profile is the registration payload forwarded to the signup endpoint.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}

// refreshPaths are the refresh endpoints in preference order. Endpoint
// naming changed across backend versions; the first path that succeeds
// wins.
var refreshPaths = []string{"/auth/refresh/", "/auth/token/refresh/"}

// Manager orchestrates login, signup, logout, identity resolution and
// exactly-once-concurrent token renewal. Construct one per application at
// the composition root and share it; independent instances are fully
// isolated.
type Manager struct {
	api   *api.Client
	store *Store
	sched *Scheduler

	mu      sync.Mutex
	status  Status
	access  string
	refresh string
	role    Role
	user    *User
	renewal *renewal
}

// renewal memoizes an in-flight refresh exchange so concurrent triggers
// share a single outcome instead of presenting the same refresh token to
// the server twice.
type renewal struct {
	done chan struct{}
	err  error
}

// NewManager creates a session manager owning an authenticated API client.
func NewManager(cfg api.Config, store *Store) *Manager {
	m := &Manager{store: store, sched: NewScheduler(), status: StatusAnonymous}
	m.api = api.New(cfg, m)
	return m
}

// Client exposes the authenticated API client for other consumers.
func (m *Manager) Client() *api.Client {
	return m.api
}

// AccessToken implements api.TokenSource. During a renewal the previously
// held token stays readable.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

// Status returns the current lifecycle state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// CurrentRole returns the resolved canonical role of the session.
func (m *Manager) CurrentRole() Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role
}

// CurrentUser returns the most recently fetched profile, or nil.
func (m *Manager) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Login exchanges credentials for a token pair, persists it, arms the
// renewal timer and fetches the identity profile. The resolved role is
// returned so the caller can route to the right landing view.
func (m *Manager) Login(ctx context.Context, username, password string) (Role, error) {
	m.setStatus(StatusAuthenticating)

	var resp api.TokenResponse
	err := m.api.Post(ctx, "/auth/login/", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		m.setStatus(StatusAnonymous)
		if api.IsUnauthorized(err) {
			return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return "", fmt.Errorf("login failed: %w", err)
	}

	pair, ok := resp.Normalize()
	if !ok {
		m.setStatus(StatusAnonymous)
		return "", ErrProtocolMismatch
	}

	// The server's role field wins over the claim embedded in the token.
	raw := pair.Role
	if raw == "" {
		raw = RoleClaim(pair.Access)
	}
	role := ResolveRole(raw)

	if err := m.adopt(pair, role); err != nil {
		m.setStatus(StatusAnonymous)
		return "", err
	}

	if _, err := m.fetchIdentity(ctx); err != nil {
		// The session is usable without the profile; it is re-fetched on
		// the next identity check.
		log.Warn().Err(err).Msg("identity fetch after login failed")
	}

	log.Info().
		Str("username", username).
		Str("role", string(role)).
		Str("token", Fingerprint(pair.Access)).
		Msg("logged in")

	return role, nil
}

// Signup forwards a registration payload. It does not authenticate the
// caller. A server-side field-validation failure surfaces the first field
// message so the caller has something specific to display.
func (m *Manager) Signup(ctx context.Context, profile Profile) error {
	if err := m.api.Post(ctx, "/auth/signup/", profile, nil); err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			if msg := se.FirstFieldError(); msg != "" {
				return fmt.Errorf("%w: %s", ErrSignupRejected, msg)
			}
			return fmt.Errorf("%w: %s", ErrSignupRejected, se.Detail)
		}
		return fmt.Errorf("signup failed: %w", err)
	}
	return nil
}

// Logout notifies the server on a best-effort basis and always clears the
// local session. Calling it when already anonymous is a no-op.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	refresh := m.refresh
	m.mu.Unlock()

	if refresh == "" {
		if rec, err := m.store.Load(); err == nil {
			refresh = rec.RefreshToken
		}
	}

	if refresh != "" {
		if err := m.api.Post(ctx, "/auth/logout/", map[string]string{"refresh": refresh}, nil); err != nil {
			// Server-side invalidation is advisory; local logout always wins.
			log.Debug().Err(err).Msg("server-side logout failed")
		}
	}

	m.clearLocal()
	log.Info().Msg("logged out")
}

// Renew exchanges the refresh token for a fresh access token. It is the
// single choke point for refresh traffic: concurrent triggers (the
// proactive timer racing a 401-driven retry) observe the in-flight
// exchange and await its single outcome, so a single-use refresh token is
// never presented to the server twice.
func (m *Manager) Renew(ctx context.Context) error {
	m.mu.Lock()
	if r := m.renewal; r != nil {
		m.mu.Unlock()
		<-r.done
		return r.err
	}
	if m.refresh == "" {
		m.mu.Unlock()
		return ErrNoRefreshToken
	}
	r := &renewal{done: make(chan struct{})}
	m.renewal = r
	refresh := m.refresh
	if m.status == StatusAuthenticated {
		m.status = StatusRenewing
	}
	m.mu.Unlock()

	r.err = m.exchange(ctx, refresh)

	// A refresh token both endpoints reject is dead; holding on to the
	// session would leave the user believing it is still active.
	if errors.Is(r.err, ErrRefreshRejected) {
		m.clearLocal()
	}

	m.mu.Lock()
	m.renewal = nil
	if m.status == StatusRenewing {
		m.status = StatusAuthenticated
	}
	m.mu.Unlock()
	close(r.done)

	return r.err
}

// EnsureIdentity fetches the current profile, renewing the access token at
// most once when the first attempt is rejected. The single retry keeps an
// invalid refresh token from looping; a second rejection tears the session
// down.
func (m *Manager) EnsureIdentity(ctx context.Context) (*User, error) {
	user, err := m.fetchIdentity(ctx)
	if err == nil {
		return user, nil
	}
	if !api.IsUnauthorized(err) {
		return nil, err
	}

	if err := m.Renew(ctx); err != nil {
		m.clearLocal()
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	user, err = m.fetchIdentity(ctx)
	if err != nil {
		m.clearLocal()
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	return user, nil
}

// Resume restores a session persisted by an earlier process. With no
// stored tokens it settles to anonymous immediately; otherwise it arms the
// renewal timer and confirms the session against the identity endpoint.
func (m *Manager) Resume(ctx context.Context) error {
	rec, err := m.store.Load()
	if err != nil {
		return err
	}

	if rec.AccessToken == "" && rec.RefreshToken == "" {
		m.setStatus(StatusAnonymous)
		return nil
	}

	m.mu.Lock()
	m.status = StatusAuthenticating
	m.access = rec.AccessToken
	m.refresh = rec.RefreshToken
	// Stored role covers first paint; the identity probe below replaces
	// it with the server's fresh value.
	m.role = ResolveRole(rec.Role)
	m.mu.Unlock()

	m.sched.Arm(rec.AccessToken, m.onRenewDue)

	if _, err := m.EnsureIdentity(ctx); err != nil {
		m.clearLocal()
		return err
	}

	m.setStatus(StatusAuthenticated)
	return nil
}

// adopt installs a fresh token pair: the durable record and the in-memory
// fields are written together, then the proactive renewal timer is
// re-armed against the new access token.
func (m *Manager) adopt(pair api.TokenPair, role Role) error {
	if err := m.store.Save(Record{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		Role:         string(role),
	}); err != nil {
		return err
	}

	m.mu.Lock()
	m.access = pair.Access
	if pair.Refresh != "" {
		m.refresh = pair.Refresh
	}
	m.role = role
	m.status = StatusAuthenticated
	m.mu.Unlock()

	m.sched.Arm(pair.Access, m.onRenewDue)
	return nil
}

// exchange tries each refresh endpoint in order; the first success wins.
func (m *Manager) exchange(ctx context.Context, refresh string) error {
	var pair api.TokenPair
	ok := false
	for _, path := range refreshPaths {
		var resp api.TokenResponse
		if err := m.api.Post(ctx, path, map[string]string{"refresh": refresh}, &resp); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("refresh endpoint failed")
			continue
		}
		if pair, ok = resp.Normalize(); ok {
			break
		}
	}
	if !ok {
		return ErrRefreshRejected
	}

	// The server may not rotate the refresh token; carry the old one
	// forward so the pair stays complete.
	if pair.Refresh == "" {
		pair.Refresh = refresh
	}

	m.mu.Lock()
	if m.status == StatusAnonymous {
		// Logged out while the exchange was in flight; the result must
		// not resurrect the cleared session.
		m.mu.Unlock()
		return nil
	}
	role := m.role
	m.mu.Unlock()

	if err := m.adopt(pair, role); err != nil {
		return err
	}

	log.Debug().Str("token", Fingerprint(pair.Access)).Msg("renewed access token")
	return nil
}

// onRenewDue is the scheduler callback. A background renewal failure is
// never surfaced as a UI error: it drives the session to anonymous and the
// route guard's redirect communicates the change.
func (m *Manager) onRenewDue() {
	if err := m.Renew(context.Background()); err != nil {
		log.Warn().Err(err).Msg("scheduled renewal failed, clearing session")
		m.clearLocal()
	}
}

// fetchIdentity loads the profile and refreshes the cached user and role.
// The server's fresh role value wins over whatever was stored.
func (m *Manager) fetchIdentity(ctx context.Context) (*User, error) {
	var user User
	if err := m.api.Get(ctx, "/me/", &user); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.user = &user
	if user.Role != "" {
		m.role = ResolveRole(user.Role)
	}
	role := m.role
	m.mu.Unlock()

	if user.Role != "" {
		if err := m.store.Save(Record{Role: string(role)}); err != nil {
			log.Warn().Err(err).Msg("failed to persist resolved role")
		}
	}

	return &user, nil
}

// clearLocal tears the session down without contacting the server.
func (m *Manager) clearLocal() {
	m.sched.Disarm()
	if err := m.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear stored session")
	}

	m.mu.Lock()
	m.status = StatusAnonymous
	m.access = ""
	m.refresh = ""
	m.role = ""
	m.user = nil
	m.mu.Unlock()
}

func (m *Manager) setStatus(status Status) {
	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}
