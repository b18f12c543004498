// Package lifecycle holds shared lifecycle constants used by fx hooks.
package lifecycle

import "time"

// DefaultTimeout bounds graceful start/stop operations (server shutdown, db ping).
const DefaultTimeout = 10 * time.Second
