package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/red11scout/blueallygenaiwebsite/internal/benchmarks"
	"github.com/red11scout/blueallygenaiwebsite/internal/cache"
	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
	"github.com/red11scout/blueallygenaiwebsite/internal/research"
	"github.com/red11scout/blueallygenaiwebsite/internal/telemetry"
)

var researchedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func acmeResult() *research.Result {
	return &research.Result{
		CompanyName:       "Acme Corp",
		Description:       "Acme builds workflow software.",
		Industry:          "Technology",
		SubIndustry:       "SaaS",
		BenchmarkIndustry: "Technology",
		Revenue:           1e8,
		RevenueSource:     research.SourcePublic,
		Employees:         450,
		EmployeesSource:   research.SourceEstimated,
		CompanySize:       calculator.SizeMedium,
		SGAPercent:        0.35,
		IndustryAvgSGA:    0.35,
		AnnualSGACost:     35_000_000,
		Competitors: []research.Competitor{
			{Name: "Globex", AIMaturity: research.MaturityLeader, KnownInitiatives: []string{"Copilot"}},
		},
		AIOpportunity: research.AIOpportunity{
			TotalOpportunity:   10_000_000,
			ConservativeTarget: 3_000_000,
			TopProcesses: []research.ProcessInsight{
				{Process: "Customer Support", Opportunity: 540_000, Confidence: benchmarks.ConfidenceHigh, Rationale: "Tickets."},
			},
		},
		FiveYearProjection:    calculator.Default().FiveYearROI(3e6, 450_000, 45_000),
		ImplementationCost:    450_000,
		MaintenanceCostAnnual: 45_000,
		DataQuality: research.DataQuality{
			OverallConfidence:   benchmarks.ConfidenceHigh,
			PublicDataAvailable: true,
			EstimationNotes:     []string{"Employee count estimated."},
		},
		ResearchedAt: researchedAt,
	}
}

func newTestResearchService(r *fakeResearcher) (*researchService, *MockResearchRepository) {
	repo := NewMockResearchRepository()
	svc := newResearchService(r, repo, cache.NewMemory(), telemetry.NopMetrics(), logger.Nop(), researchSettings{
		timeout:   time.Second,
		ttl:       24 * time.Hour,
		lookupTTL: time.Hour,
	})
	svc.now = func() time.Time { return researchedAt.Add(time.Hour) }
	return svc, repo
}

func TestResearchService_StoresAndServesFromCache(t *testing.T) {
	r := &fakeResearcher{result: acmeResult()}
	svc, repo := newTestResearchService(r)
	ctx := context.Background()

	first, err := svc.Research(ctx, "https://www.Acme.com/about")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "acme.com", first.Domain)
	assert.Equal(t, 1, repo.upserts)

	second, err := svc.Research(ctx, "acme.com")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, r.calls, "fresh row is served without a research run")

	want := first.Result
	got := second.Result
	assert.Equal(t, want.CompanyName, got.CompanyName)
	assert.Equal(t, want.AIOpportunity, got.AIOpportunity)
	assert.Equal(t, want.FiveYearProjection, got.FiveYearProjection)
	assert.Equal(t, want.Competitors, got.Competitors)
	assert.Equal(t, want.DataQuality, got.DataQuality)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.CompanySize, got.CompanySize)
	assert.Equal(t, want.ImplementationCost, got.ImplementationCost)
}

func TestResearchService_StaleRowIsRefreshed(t *testing.T) {
	r := &fakeResearcher{result: acmeResult()}
	svc, _ := newTestResearchService(r)
	ctx := context.Background()

	_, err := svc.Research(ctx, "acme.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return researchedAt.Add(48 * time.Hour) }
	resp, err := svc.Research(ctx, "acme.com")
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Equal(t, 2, r.calls)
}

func TestResearchService_FailureNeverFallsBackToStaleRow(t *testing.T) {
	r := &fakeResearcher{result: acmeResult()}
	svc, _ := newTestResearchService(r)
	ctx := context.Background()

	_, err := svc.Research(ctx, "acme.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return researchedAt.Add(48 * time.Hour) }
	r.err = errors.ResearchFailed("acme.com", stderrors.New("model exploded"))

	resp, err := svc.Research(ctx, "acme.com")
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeResearchFailed, errors.Code(err))
	assert.Equal(t, "failed to research company: acme.com", errors.Message(err))
}

func TestResearchService_Timeout(t *testing.T) {
	r := &fakeResearcher{block: true}
	svc, repo := newTestResearchService(r)
	svc.settings.timeout = 10 * time.Millisecond

	_, err := svc.Research(context.Background(), "slow.com")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeResearchFailed, errors.Code(err))
	assert.Equal(t, 0, repo.upserts)
}

func TestResearchService_EmptyDomain(t *testing.T) {
	svc, _ := newTestResearchService(&fakeResearcher{})

	_, err := svc.Research(context.Background(), "  https://  ")
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.Code(err))
}

func TestResearchService_RepositoryErrorStillResearches(t *testing.T) {
	r := &fakeResearcher{result: acmeResult()}
	svc, repo := newTestResearchService(r)
	repo.getErr = stderrors.New("connection reset")

	resp, err := svc.Research(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Equal(t, 1, r.calls)
}

func TestResearchService_QuickLookupCachesValidAnswers(t *testing.T) {
	r := &fakeResearcher{lookup: research.QuickLookupResult{Valid: true, CompanyName: "Acme Corp", Industry: "Technology"}}
	svc, _ := newTestResearchService(r)
	ctx := context.Background()

	first := svc.QuickLookup(ctx, "acme.com")
	second := svc.QuickLookup(ctx, "www.acme.com")
	assert.Equal(t, first, second)
	assert.True(t, second.Valid)
	assert.Equal(t, 1, r.lookups)

	r.lookup = research.QuickLookupResult{Valid: false}
	svc.QuickLookup(ctx, "nope.invalid")
	svc.QuickLookup(ctx, "nope.invalid")
	assert.Equal(t, 3, r.lookups, "invalid answers are not cached")

	assert.False(t, svc.QuickLookup(ctx, "").Valid)
	assert.Equal(t, 3, r.lookups)
}
