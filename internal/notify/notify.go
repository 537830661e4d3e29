// Package notify sends the watering notification emails.
package notify

import "context"

// Notifier is the port the record service uses to announce a watered garden.
// Implementations absorb per-recipient failures; an error means nobody could
// be notified, and even that is only logged by the caller.
type Notifier interface {
	Notify(ctx context.Context, date, gardener, notes string) error
}
