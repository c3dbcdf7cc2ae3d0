package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the sink is unavailable; the graph can still be read.
	Degraded Status = "degraded"
	// Unhealthy indicates the graph is unavailable and no run can proceed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names.
const (
	ComponentGraph = "graph"
	ComponentSink  = "sink"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Errors map[string]string
}

// Service coordinates health checks.
type Service struct {
	graph Pinger
	sink  Pinger
}

// New creates a Service. sink can be nil for sinks without a server.
func New(graph, sink Pinger) *Service {
	return &Service{graph: graph, sink: sink}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{
		Status: Healthy,
		Checks: make(map[string]CheckResult),
		Errors: make(map[string]string),
	}

	if !r.probe(ctx, ComponentGraph, s.graph) {
		r.Status = Unhealthy
	}
	if s.sink != nil && !r.probe(ctx, ComponentSink, s.sink) && r.Status == Healthy {
		r.Status = Degraded
	}
	return r
}

func (r *Report) probe(ctx context.Context, name string, p Pinger) bool {
	if err := p.Ping(ctx); err != nil {
		r.Checks[name] = CheckError
		r.Errors[name] = err.Error()
		return false
	}
	r.Checks[name] = CheckOK
	return true
}
