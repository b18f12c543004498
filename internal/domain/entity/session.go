// Package entity contains the core business objects of the project.
package entity

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// SessionState is the derived authentication stage of a browser session.
type SessionState int

const (
	// StateAnonymous means no credentials have been presented (or the session was cleared).
	StateAnonymous SessionState = iota
	// StatePendingMFA means credentials were verified but the one-time code was not.
	StatePendingMFA
	// StateVerified means both credentials and the one-time code were verified.
	StateVerified
)

// String returns a readable name for the state.
func (s SessionState) String() string {
	switch s {
	case StatePendingMFA:
		return "pending_mfa"
	case StateVerified:
		return "verified"
	default:
		return "anonymous"
	}
}

// PendingRedirect is a destination captured when an unauthenticated or
// unverified request hit a protected resource. It is consumed exactly once
// after the whole login pipeline completes.
type PendingRedirect struct {
	Path  string
	Query string
}

// URL rebuilds the destination including its query string.
func (r *PendingRedirect) URL() string {
	if r.Query == "" {
		return r.Path
	}

	return r.Path + "?" + r.Query
}

// AuthSession models one browser's authentication progress as an explicit
// typed structure. Every transition goes through a method that performs a
// wholesale reset first, so stale keys from a previous stage (or a previous
// principal on a shared session) can never leak into the next one.
//
// Invariants enforced by construction:
//   - MFAVerified implies LoggedIn.
//   - A pending code exists only while LoggedIn and not MFAVerified.
//   - At most one pending code exists; generating a new one overwrites it.
//   - Completing verification clears the pending code and its expiry.
type AuthSession struct {
	PrincipalID   uuid.UUID
	PrincipalName string
	Identity      string
	Role          Role

	LoggedIn    bool
	MFAVerified bool

	PendingCode       string
	PendingCodeExpiry time.Time

	// Redirect is the single authoritative pending destination. It survives
	// both the login and the MFA transitions and is consumed once at the end
	// of the pipeline.
	Redirect *PendingRedirect
}

// State derives the current stage from the session flags.
func (s *AuthSession) State() SessionState {
	switch {
	case s.LoggedIn && s.MFAVerified:
		return StateVerified
	case s.LoggedIn:
		return StatePendingMFA
	default:
		return StateAnonymous
	}
}

// Clear resets every field. Used on logout and as the first step of every
// state transition. Idempotent.
func (s *AuthSession) Clear() {
	*s = AuthSession{}
}

// BeginLogin transitions the session to the pending-MFA stage after the
// credential store accepted the principal's secret. The session is fully
// cleared first so residual state from a previous login cannot survive; only
// the captured pending destination is carried over. No code is generated here,
// that happens when the challenge is first requested.
func (s *AuthSession) BeginLogin(user *User) {
	redirect := s.Redirect
	s.Clear()

	s.PrincipalID = user.ID
	s.PrincipalName = user.Name
	s.Identity = user.Email
	s.Role = user.Role
	s.LoggedIn = true
	s.MFAVerified = false
	s.Redirect = redirect
}

// SetChallenge stores a freshly generated one-time code, overwriting any
// outstanding one. It refuses to bind a code to a session that is not in the
// pending-MFA stage.
func (s *AuthSession) SetChallenge(code string, expiresAt time.Time) bool {
	if s.State() != StatePendingMFA {
		return false
	}

	s.PendingCode = code
	s.PendingCodeExpiry = expiresAt

	return true
}

// ClearChallenge discards the outstanding code so a fresh one must be
// requested. Called when an expired code is submitted.
func (s *AuthSession) ClearChallenge() {
	s.PendingCode = ""
	s.PendingCodeExpiry = time.Time{}
}

// CompleteVerification transitions the session to the fully verified stage.
// Rather than flipping a flag in place, it snapshots the identity fields,
// clears the whole session, and restores only what a verified session is
// allowed to carry. This guarantees no artifact of the pre-verification phase
// (most importantly the pending code) survives.
func (s *AuthSession) CompleteVerification() bool {
	if s.State() != StatePendingMFA {
		return false
	}

	id, name, identity, role := s.PrincipalID, s.PrincipalName, s.Identity, s.Role
	redirect := s.Redirect
	s.Clear()

	s.PrincipalID = id
	s.PrincipalName = name
	s.Identity = identity
	s.Role = role
	s.LoggedIn = true
	s.MFAVerified = true
	s.Redirect = redirect

	return true
}

// CaptureRedirect records the destination of a request that was bounced into
// the login pipeline. The latest capture wins.
func (s *AuthSession) CaptureRedirect(path string, query url.Values) {
	s.Redirect = &PendingRedirect{Path: path, Query: query.Encode()}
}

// ConsumeRedirect returns the pending destination and removes it, or falls
// back to the role-based landing page when none was captured.
func (s *AuthSession) ConsumeRedirect() string {
	if s.Redirect == nil {
		return s.Role.LandingPath()
	}

	dest := s.Redirect.URL()
	s.Redirect = nil

	return dest
}

// HasChallenge reports whether an outstanding one-time code is bound to the session.
func (s *AuthSession) HasChallenge() bool {
	return s.PendingCode != ""
}
