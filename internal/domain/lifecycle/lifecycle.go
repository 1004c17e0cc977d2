// Package lifecycle holds timing constants shared by startup and shutdown code.
package lifecycle

import "time"

// DefaultTimeout bounds fx start and stop hooks and graceful HTTP shutdown.
const DefaultTimeout = 15 * time.Second
