package service

import "context"

// CodeSender delivers a one-time code to the principal out-of-band.
// Delivery is best-effort from the state machine's perspective: a failure must
// surface as a user-visible resend prompt, never a silent success.
type CodeSender interface {
	// SendCode delivers the code to the given identity.
	SendCode(ctx context.Context, email, displayName, code string) error
}
