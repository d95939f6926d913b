package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed piece of infrastructure.
type Component interface {
	// Name returns the unique registration name.
	Name() string
	// Start prepares the component for use.
	Start(ctx context.Context) error
	// Stop releases the component's resources.
	Stop(ctx context.Context) error
	// Health returns the current health status.
	Health(ctx context.Context) Health
}

// Description summarizes a component for startup output.
type Description struct {
	// Name is the display name. Empty means Component.Name().
	Name string
	// Type categorizes the component, e.g. "adapter".
	Type string
	// Details is a one-line configuration summary, e.g. "timeout=5s proxy=none".
	Details string
}

// Describable is optionally implemented by components that can describe themselves.
type Describable interface {
	Describe() Description
}
