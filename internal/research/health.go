package research

import (
	"strings"
	"sync"
	"time"
)

// HealthMonitor tracks model call outcomes
type HealthMonitor struct {
	mu                   sync.RWMutex
	totalCalls           int64
	successfulCalls      int64
	failedCalls          int64
	consecutiveFailures  int64
	lastFailureTime      time.Time
	lastSuccessTime      time.Time
	recentFailures       []FailureRecord
	maxRecentFailures    int
	failureThreshold     float64
	consecutiveThreshold int64
	now                  func() time.Time
}

// FailureRecord is a single failed model call
type FailureRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Domain    string    `json:"domain,omitempty"`
	Error     string    `json:"error"`
}

// HealthStatus summarises recent provider behaviour
type HealthStatus struct {
	IsHealthy           bool            `json:"isHealthy"`
	Provider            string          `json:"provider,omitempty"`
	TotalCalls          int64           `json:"totalCalls"`
	SuccessfulCalls     int64           `json:"successfulCalls"`
	FailedCalls         int64           `json:"failedCalls"`
	SuccessRate         float64         `json:"successRate"`
	ConsecutiveFailures int64           `json:"consecutiveFailures"`
	LastFailureTime     *time.Time      `json:"lastFailureTime,omitempty"`
	LastSuccessTime     *time.Time      `json:"lastSuccessTime,omitempty"`
	RecentFailures      []FailureRecord `json:"recentFailures"`
	Issues              []string        `json:"issues"`
}

// NewHealthMonitor keeps the last 50 failures and flags a failure rate
// above 20% or 5 failures in a row.
func NewHealthMonitor() *HealthMonitor {
	return &HealthMonitor{
		maxRecentFailures:    50,
		failureThreshold:     0.2,
		consecutiveThreshold: 5,
		recentFailures:       make([]FailureRecord, 0, 50),
		now:                  time.Now,
	}
}

// RecordSuccess records a successful call
func (h *HealthMonitor) RecordSuccess(operation string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.totalCalls++
	h.successfulCalls++
	h.consecutiveFailures = 0
	h.lastSuccessTime = h.now()
}

// RecordFailure records a failed call
func (h *HealthMonitor) RecordFailure(operation, domain, errorMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.totalCalls++
	h.failedCalls++
	h.consecutiveFailures++
	h.lastFailureTime = now

	h.recentFailures = append(h.recentFailures, FailureRecord{
		Timestamp: now,
		Operation: operation,
		Domain:    domain,
		Error:     errorMsg,
	})
	if len(h.recentFailures) > h.maxRecentFailures {
		h.recentFailures = h.recentFailures[1:]
	}
}

// Status returns a snapshot of the monitor
func (h *HealthMonitor) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := HealthStatus{
		IsHealthy:           true,
		TotalCalls:          h.totalCalls,
		SuccessfulCalls:     h.successfulCalls,
		FailedCalls:         h.failedCalls,
		ConsecutiveFailures: h.consecutiveFailures,
		RecentFailures:      make([]FailureRecord, len(h.recentFailures)),
		Issues:              []string{},
		SuccessRate:         1.0,
	}
	copy(status.RecentFailures, h.recentFailures)

	if h.totalCalls > 0 {
		status.SuccessRate = float64(h.successfulCalls) / float64(h.totalCalls)
	}
	if !h.lastFailureTime.IsZero() {
		t := h.lastFailureTime
		status.LastFailureTime = &t
	}
	if !h.lastSuccessTime.IsZero() {
		t := h.lastSuccessTime
		status.LastSuccessTime = &t
	}

	if h.totalCalls >= 10 && status.SuccessRate < 1.0-h.failureThreshold {
		status.IsHealthy = false
		status.Issues = append(status.Issues, "High failure rate detected (>20%)")
	}
	if h.consecutiveFailures >= h.consecutiveThreshold {
		status.IsHealthy = false
		status.Issues = append(status.Issues, "Multiple consecutive failures detected")
	}

	h.analyzeFailurePatterns(&status)
	return status
}

// analyzeFailurePatterns flags an error category behind most recent failures
func (h *HealthMonitor) analyzeFailurePatterns(status *HealthStatus) {
	if len(h.recentFailures) < 3 {
		return
	}

	counts := make(map[string]int)
	for _, f := range h.recentFailures {
		counts[categorizeError(f.Error)]++
	}

	total := float64(len(h.recentFailures))
	for _, category := range []string{"timeout", "rate_limit", "authentication", "parse"} {
		if float64(counts[category])/total <= 0.5 {
			continue
		}
		switch category {
		case "timeout":
			status.Issues = append(status.Issues, "Frequent model timeouts")
		case "rate_limit":
			status.Issues = append(status.Issues, "Provider rate limiting detected")
		case "authentication":
			status.Issues = append(status.Issues, "Provider rejected credentials")
		case "parse":
			status.Issues = append(status.Issues, "Model responses are frequently unparseable")
		}
	}
}

func categorizeError(errorMsg string) string {
	msg := strings.ToLower(errorMsg)

	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return "rate_limit"
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return "authentication"
	case strings.Contains(msg, "unparseable") || strings.Contains(msg, "decode"):
		return "parse"
	}
	return "other"
}

// FailureRate returns failed/total, or 0 before any call
func (h *HealthMonitor) FailureRate() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.totalCalls == 0 {
		return 0
	}
	return float64(h.failedCalls) / float64(h.totalCalls)
}

// Reset clears all counters
func (h *HealthMonitor) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.totalCalls = 0
	h.successfulCalls = 0
	h.failedCalls = 0
	h.consecutiveFailures = 0
	h.lastFailureTime = time.Time{}
	h.lastSuccessTime = time.Time{}
	h.recentFailures = h.recentFailures[:0]
}
