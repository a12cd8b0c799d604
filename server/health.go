package server

import (
	"context"
	"sync"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck reports the health of one component
type HealthCheck func(ctx context.Context) HealthCheckResult

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status      HealthStatus   `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ns"`
}

// HealthChecker runs registered checks on demand, in parallel, each under
// its own timeout.
type HealthChecker struct {
	mu      sync.RWMutex
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthChecker creates a checker whose checks are cut off after timeout
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{
		checks:  make(map[string]HealthCheck),
		timeout: timeout,
	}
}

// Register adds or replaces the check called name
func (hc *HealthChecker) Register(name string, check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// Unregister removes a health check
func (hc *HealthChecker) Unregister(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// Check runs every check and returns the results by name. A check that
// outlives its timeout is reported unhealthy.
func (hc *HealthChecker) Check(ctx context.Context) map[string]HealthCheckResult {
	hc.mu.RLock()
	checks := make(map[string]HealthCheck, len(hc.checks))
	for name, check := range hc.checks {
		checks[name] = check
	}
	hc.mu.RUnlock()

	results := make(map[string]HealthCheckResult, len(checks))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, check := range checks {
		wg.Add(1)
		go func(n string, c HealthCheck) {
			defer wg.Done()
			result := hc.run(ctx, c)
			mu.Lock()
			results[n] = result
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return results
}

func (hc *HealthChecker) run(ctx context.Context, check HealthCheck) HealthCheckResult {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan HealthCheckResult, 1)
	go func() { done <- check(ctx) }()

	var result HealthCheckResult
	select {
	case result = <-done:
	case <-ctx.Done():
		result = HealthCheckResult{Status: HealthStatusUnhealthy, Message: ctx.Err().Error()}
	}
	result.Duration = time.Since(start)
	result.LastChecked = time.Now()
	return result
}

// Overall folds results into one status: any unhealthy wins over any
// degraded, and no results is healthy.
func Overall(results map[string]HealthCheckResult) HealthStatus {
	status := HealthStatusHealthy
	for _, r := range results {
		switch r.Status {
		case HealthStatusUnhealthy:
			return HealthStatusUnhealthy
		case HealthStatusDegraded:
			status = HealthStatusDegraded
		}
	}
	return status
}

// RoutesHealthCheck reports degraded while count returns zero
func RoutesHealthCheck(count func() int) HealthCheck {
	return func(context.Context) HealthCheckResult {
		n := count()
		if n == 0 {
			return HealthCheckResult{Status: HealthStatusDegraded, Message: "no routes registered"}
		}
		return HealthCheckResult{
			Status:  HealthStatusHealthy,
			Details: map[string]any{"routes": n},
		}
	}
}
