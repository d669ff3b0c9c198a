package contract

import "context"

// Capability is the uniform contract every agent satisfies: map accumulated
// shared state to one structured artifact. Implementations own their retry and
// backoff; a returned error is terminal for the call.
type Capability interface {
	ID() AgentID
	DisplayName() string
	Run(ctx context.Context, snap *Snapshot) (map[string]any, error)
}

// Roster is the immutable agent set built once at startup and reused across
// runs.
type Roster interface {
	Get(id AgentID) (Capability, bool)
	IDs() []AgentID
}

// Sink receives orchestration events in program order.
type Sink interface {
	Publish(ev Event)
}
