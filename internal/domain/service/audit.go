package service

import (
	"context"
	"time"
)

// Audit event types covering every authentication-relevant outcome.
const (
	AuditLoginSuccess   = "login_success"
	AuditLoginFailure   = "login_failure"
	AuditCodeSent       = "mfa_code_sent"
	AuditCodeSendFailed = "mfa_code_send_failed"
	AuditVerifySuccess  = "mfa_verify_success"
	AuditVerifyFailure  = "mfa_verify_failure"
	AuditRateLimited    = "mfa_rate_limited"
	AuditLogout         = "logout"
	AuditLegacySecret   = "legacy_secret_used"
)

// AuditIdentityUnknown marks events that cannot be attributed to a principal,
// e.g. enumeration attempts against identities that do not exist.
const AuditIdentityUnknown = "unknown"

// AuditEvent is one attributable authentication outcome.
type AuditEvent struct {
	Time        time.Time
	Type        string
	PrincipalID string // Principal UUID, or AuditIdentityUnknown.
	Identity    string // The identity string presented, or AuditIdentityUnknown.
	Success     bool
	Detail      string
}

// AuditTrail records authentication outcomes for forensic reconstruction of
// account-takeover attempts. Implementations must never log secrets or codes.
type AuditTrail interface {
	Record(ctx context.Context, event AuditEvent)
}
