package health

import "context"

// Pinger checks a collaborator's availability.
type Pinger interface {
	Ping(ctx context.Context) error
}
