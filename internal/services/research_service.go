package services

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/red11scout/blueallygenaiwebsite/internal/benchmarks"
	"github.com/red11scout/blueallygenaiwebsite/internal/cache"
	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
	"github.com/red11scout/blueallygenaiwebsite/internal/models"
	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
	"github.com/red11scout/blueallygenaiwebsite/internal/research"
	"github.com/red11scout/blueallygenaiwebsite/internal/telemetry"
)

const quickLookupPrefix = "quick-lookup:"

// ResearchResponse is a research result and whether it came from the store
type ResearchResponse struct {
	*research.Result
	Cached bool `json:"cached"`
}

// researchDetails are the result fields stored in the details column
type researchDetails struct {
	Description           string                 `json:"description,omitempty"`
	BenchmarkIndustry     string                 `json:"benchmarkIndustry"`
	CompanySize           calculator.CompanySize `json:"companySize"`
	IndustryAvgSGA        float64                `json:"industryAvgSga"`
	ImplementationCost    int64                  `json:"implementationCost"`
	MaintenanceCostAnnual int64                  `json:"maintenanceCostAnnual"`
	PublicDataAvailable   bool                   `json:"publicDataAvailable"`
}

type researchSettings struct {
	timeout   time.Duration
	ttl       time.Duration
	lookupTTL time.Duration
}

type researchService struct {
	researcher Researcher
	repo       repository.CompanyResearchRepository
	cache      cache.Provider
	metrics    *telemetry.Metrics
	logger     logger.Logger
	settings   researchSettings
	now        func() time.Time
}

func newResearchService(r Researcher, repo repository.CompanyResearchRepository, c cache.Provider, metrics *telemetry.Metrics, log logger.Logger, settings researchSettings) *researchService {
	return &researchService{
		researcher: r,
		repo:       repo,
		cache:      c,
		metrics:    metrics,
		logger:     log,
		settings:   settings,
		now:        nowUTC,
	}
}

// Research returns a stored result younger than the cache TTL, or researches
// the domain and stores the outcome. A failed run is never replaced by an
// older stored row.
func (s *researchService) Research(ctx context.Context, raw string) (resp *ResearchResponse, err error) {
	domain := research.CleanDomain(raw)
	ctx, span := telemetry.StartSpan(ctx, "research.company", attribute.String("domain", domain))
	defer func() { telemetry.EndSpan(span, err) }()

	if domain == "" {
		return nil, errors.InvalidInput("domain is required", nil)
	}

	if cached := s.fresh(ctx, domain); cached != nil {
		s.metrics.RecordCache(ctx, "research", true)
		return &ResearchResponse{Result: cached, Cached: true}, nil
	}
	s.metrics.RecordCache(ctx, "research", false)

	runCtx := ctx
	if s.settings.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.settings.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.researcher.Research(runCtx, domain)
	if err != nil {
		s.metrics.RecordResearch(ctx, "failed", time.Since(start))
		s.logger.Warn("Company research failed", "domain", domain, "error", err.Error())
		if errors.Code(err) == errors.ErrCodeInternalError {
			err = errors.ResearchFailed(domain, err)
		}
		return nil, err
	}
	s.metrics.RecordResearch(ctx, "fresh", time.Since(start))

	s.store(ctx, result)
	return &ResearchResponse{Result: result}, nil
}

func (s *researchService) fresh(ctx context.Context, domain string) *research.Result {
	rec, err := s.repo.GetByDomain(ctx, domain)
	if err != nil {
		if !stderrors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Failed to read stored research", "domain", domain, "error", err.Error())
		}
		return nil
	}
	if s.settings.ttl > 0 && s.now().Sub(rec.ResearchedAt) >= s.settings.ttl {
		return nil
	}

	result, err := resultFromRecord(rec)
	if err != nil {
		s.logger.Warn("Discarding unreadable stored research", "domain", domain, "error", err.Error())
		return nil
	}
	return result
}

func (s *researchService) store(ctx context.Context, result *research.Result) {
	rec, err := recordFromResult(result)
	if err == nil {
		err = s.repo.Upsert(ctx, rec)
	}
	if err != nil {
		s.logger.Error("Failed to store research result", err, "domain", result.Domain)
	}
}

// QuickLookup validates a domain, caching valid answers
func (s *researchService) QuickLookup(ctx context.Context, raw string) research.QuickLookupResult {
	domain := research.CleanDomain(raw)
	if domain == "" {
		return research.QuickLookupResult{Valid: false}
	}

	key := quickLookupPrefix + domain
	var cached research.QuickLookupResult
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		s.metrics.RecordCache(ctx, "quick_lookup", true)
		return cached
	} else if !stderrors.Is(err, cache.ErrMiss) {
		s.logger.Warn("Quick lookup cache read failed", "domain", domain, "error", err.Error())
	}
	s.metrics.RecordCache(ctx, "quick_lookup", false)

	result := s.researcher.QuickLookup(ctx, domain)
	if result.Valid {
		if err := cache.SetJSON(ctx, s.cache, key, result, s.settings.lookupTTL); err != nil {
			s.logger.Warn("Quick lookup cache write failed", "domain", domain, "error", err.Error())
		}
	}
	return result
}

// Health reports the research provider's call health
func (s *researchService) Health() research.HealthStatus {
	return s.researcher.Health()
}

func recordFromResult(r *research.Result) (*models.CompanyResearch, error) {
	rec := &models.CompanyResearch{
		Domain:                r.Domain,
		CompanyName:           r.CompanyName,
		Industry:              r.Industry,
		SubIndustry:           r.SubIndustry,
		Revenue:               r.Revenue,
		RevenueSource:         string(r.RevenueSource),
		Employees:             r.Employees,
		EmployeesSource:       string(r.EmployeesSource),
		SGAPercent:            r.SGAPercent,
		AnnualSGACost:         float64(r.AnnualSGACost),
		DataQualityConfidence: string(r.DataQuality.OverallConfidence),
		ResearchedAt:          r.ResearchedAt,
	}

	var err error
	if rec.AIOpportunity, err = models.NewJSON(r.AIOpportunity); err != nil {
		return nil, err
	}
	if rec.Competitors, err = models.NewJSON(r.Competitors); err != nil {
		return nil, err
	}
	if rec.FiveYearProjection, err = models.NewJSON(r.FiveYearProjection); err != nil {
		return nil, err
	}
	if rec.EstimationNotes, err = models.NewJSON(r.DataQuality.EstimationNotes); err != nil {
		return nil, err
	}
	rec.Details, err = models.NewJSON(researchDetails{
		Description:           r.Description,
		BenchmarkIndustry:     r.BenchmarkIndustry,
		CompanySize:           r.CompanySize,
		IndustryAvgSGA:        r.IndustryAvgSGA,
		ImplementationCost:    r.ImplementationCost,
		MaintenanceCostAnnual: r.MaintenanceCostAnnual,
		PublicDataAvailable:   r.DataQuality.PublicDataAvailable,
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func resultFromRecord(rec *models.CompanyResearch) (*research.Result, error) {
	r := &research.Result{
		CompanyName:     rec.CompanyName,
		Domain:          rec.Domain,
		Industry:        rec.Industry,
		SubIndustry:     rec.SubIndustry,
		Revenue:         rec.Revenue,
		RevenueSource:   research.Source(rec.RevenueSource),
		Employees:       rec.Employees,
		EmployeesSource: research.Source(rec.EmployeesSource),
		SGAPercent:      rec.SGAPercent,
		AnnualSGACost:   int64(rec.AnnualSGACost),
		Competitors:     []research.Competitor{},
		ResearchedAt:    rec.ResearchedAt,
		DataQuality: research.DataQuality{
			OverallConfidence: benchmarks.Confidence(rec.DataQualityConfidence),
			EstimationNotes:   []string{},
		},
	}

	var details researchDetails
	for _, col := range []struct {
		raw models.JSON
		v   interface{}
	}{
		{rec.AIOpportunity, &r.AIOpportunity},
		{rec.Competitors, &r.Competitors},
		{rec.FiveYearProjection, &r.FiveYearProjection},
		{rec.EstimationNotes, &r.DataQuality.EstimationNotes},
		{rec.Details, &details},
	} {
		if err := col.raw.Decode(col.v); err != nil {
			return nil, err
		}
	}

	r.Description = details.Description
	r.BenchmarkIndustry = details.BenchmarkIndustry
	r.CompanySize = details.CompanySize
	r.IndustryAvgSGA = details.IndustryAvgSGA
	r.ImplementationCost = details.ImplementationCost
	r.MaintenanceCostAnnual = details.MaintenanceCostAnnual
	r.DataQuality.PublicDataAvailable = details.PublicDataAvailable
	if r.CompanySize == "" {
		r.CompanySize = calculator.ClassifyCompanySize(r.Employees)
	}
	return r, nil
}
