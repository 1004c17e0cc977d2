// Package delivery holds the entry points that expose fintracker to the outside.
package delivery

import "context"

// Delivery is a long running server started by the application lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
