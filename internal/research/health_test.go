package research

import (
	"testing"
	"time"
)

func TestHealthMonitor_RecordSuccessAndFailure(t *testing.T) {
	monitor := NewHealthMonitor()

	if !monitor.Status().IsHealthy {
		t.Error("Expected new monitor to be healthy")
	}

	monitor.RecordSuccess("research")
	monitor.RecordSuccess("insights")
	monitor.RecordSuccess("lookup")

	status := monitor.Status()
	if status.TotalCalls != 3 {
		t.Errorf("Expected 3 total calls, got %d", status.TotalCalls)
	}
	if status.SuccessRate != 1.0 {
		t.Errorf("Expected 100%% success rate, got %.2f", status.SuccessRate)
	}

	monitor.RecordFailure("research", "acme.com", "connection refused")

	status = monitor.Status()
	if status.FailedCalls != 1 {
		t.Errorf("Expected 1 failed call, got %d", status.FailedCalls)
	}
	if status.SuccessRate != 0.75 {
		t.Errorf("Expected 75%% success rate, got %.2f", status.SuccessRate)
	}
	if len(status.RecentFailures) != 1 || status.RecentFailures[0].Domain != "acme.com" {
		t.Errorf("Expected one recent failure for acme.com, got %+v", status.RecentFailures)
	}
}

func TestHealthMonitor_ConsecutiveFailures(t *testing.T) {
	monitor := NewHealthMonitor()

	for i := 0; i < 5; i++ {
		monitor.RecordFailure("research", "", "error")
	}

	status := monitor.Status()
	if status.IsHealthy {
		t.Error("Expected monitor to be unhealthy after consecutive failures")
	}
	if !containsIssue(status.Issues, "Multiple consecutive failures detected") {
		t.Errorf("Expected consecutive failure issue, got %v", status.Issues)
	}

	monitor.RecordSuccess("research")
	if got := monitor.Status().ConsecutiveFailures; got != 0 {
		t.Errorf("Expected consecutive failures to reset, got %d", got)
	}
}

func TestHealthMonitor_HighFailureRate(t *testing.T) {
	monitor := NewHealthMonitor()

	// 7 successes, 3 failures (30%), no more than 1 failure in a row
	for i := 0; i < 10; i++ {
		if i%3 == 2 {
			monitor.RecordFailure("lookup", "", "upstream error")
		} else {
			monitor.RecordSuccess("lookup")
		}
	}

	status := monitor.Status()
	if status.IsHealthy {
		t.Error("Expected monitor to be unhealthy with a 30% failure rate")
	}
	if !containsIssue(status.Issues, "High failure rate detected (>20%)") {
		t.Errorf("Expected failure rate issue, got %v", status.Issues)
	}
	if rate := monitor.FailureRate(); rate != 0.3 {
		t.Errorf("Expected failure rate 0.3, got %.2f", rate)
	}
}

func TestHealthMonitor_FailurePatterns(t *testing.T) {
	monitor := NewHealthMonitor()
	monitor.RecordFailure("research", "a.com", "context deadline exceeded")
	monitor.RecordFailure("research", "b.com", "request timeout")
	monitor.RecordFailure("research", "c.com", "status 429")

	if !containsIssue(monitor.Status().Issues, "Frequent model timeouts") {
		t.Error("Expected timeout pattern to be reported")
	}
}

func TestHealthMonitor_KeepsBoundedFailures(t *testing.T) {
	monitor := NewHealthMonitor()
	for i := 0; i < 60; i++ {
		monitor.RecordFailure("research", "", "error")
	}
	if got := len(monitor.Status().RecentFailures); got != 50 {
		t.Errorf("Expected 50 recent failures, got %d", got)
	}
}

func TestHealthMonitor_Reset(t *testing.T) {
	monitor := NewHealthMonitor()
	monitor.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	monitor.RecordFailure("research", "", "error")
	monitor.Reset()

	status := monitor.Status()
	if status.TotalCalls != 0 || status.LastFailureTime != nil || len(status.RecentFailures) != 0 {
		t.Errorf("Expected empty status after reset, got %+v", status)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := map[string]string{
		"context deadline exceeded":              "timeout",
		"chat completion returned status 429: x": "rate_limit",
		"status 401 unauthorized":                "authentication",
		"unparseable model response: eof":        "parse",
		"something else":                         "other",
	}
	for msg, want := range tests {
		if got := categorizeError(msg); got != want {
			t.Errorf("categorizeError(%q) = %q, want %q", msg, got, want)
		}
	}
}

func containsIssue(issues []string, want string) bool {
	for _, issue := range issues {
		if issue == want {
			return true
		}
	}
	return false
}
