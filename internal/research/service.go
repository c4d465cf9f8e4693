package research

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/red11scout/blueallygenaiwebsite/internal/benchmarks"
	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
)

// TopProcessCount is how many processes get a written rationale.
const TopProcessCount = 5

// Service researches companies through a Provider.
type Service struct {
	provider Provider
	engine   *calculator.Engine
	site     *SiteFetcher
	health   *HealthMonitor
	logger   logger.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSiteFetcher adds home-page metadata to research prompts.
func WithSiteFetcher(f *SiteFetcher) Option {
	return func(s *Service) { s.site = f }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithHealthMonitor(h *HealthMonitor) Option {
	return func(s *Service) { s.health = h }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a research service. A nil engine uses the built-in tables.
func NewService(provider Provider, engine *calculator.Engine, opts ...Option) *Service {
	if engine == nil {
		engine = calculator.Default()
	}
	s := &Service{
		provider: provider,
		engine:   engine,
		health:   NewHealthMonitor(),
		logger:   logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Health returns provider call statistics.
func (s *Service) Health() HealthStatus {
	status := s.health.Status()
	status.Provider = s.provider.Name()
	return status
}

// CleanDomain lower-cases raw and strips scheme, "www." and any path.
func CleanDomain(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return d
}

// Research asks the provider about domain and computes the opportunity
// assessment from the sanitised answer. Any failure to obtain usable facts
// is reported as ResearchFailed; rationale failures only degrade text.
func (s *Service) Research(ctx context.Context, rawDomain string) (*Result, error) {
	domain := CleanDomain(rawDomain)
	if domain == "" {
		return nil, errors.InvalidInput("domain is required", nil)
	}

	log := s.logger.With("domain", domain, "provider", s.provider.Name())

	var site SiteSnapshot
	if s.site != nil {
		snap, err := s.site.Snapshot(ctx, domain)
		if err != nil {
			log.Debug("website snapshot unavailable", "error", err.Error())
		} else {
			site = snap
		}
	}

	tables := s.engine.Tables()
	out, err := s.provider.Complete(ctx, factsPrompt(domain, tables.IndustryNames(), site))
	if err != nil {
		s.health.RecordFailure("research", domain, err.Error())
		log.Error("company research call failed", err)
		return nil, errors.ResearchFailed(domain, err)
	}

	var facts rawFacts
	if err := decodeJSON(out, &facts); err != nil {
		s.health.RecordFailure("research", domain, err.Error())
		log.Error("company research response unusable", err)
		return nil, errors.ResearchFailed(domain, err)
	}
	if strings.TrimSpace(facts.CompanyName) == "" {
		err := stderrors.New("response has no company name")
		s.health.RecordFailure("research", domain, err.Error())
		return nil, errors.ResearchFailed(domain, err)
	}
	s.health.RecordSuccess("research")

	result, opp := s.assess(domain, facts)
	result.AIOpportunity.TopProcesses = s.insights(ctx, log, result, opp.TopProcesses(TopProcessCount))

	log.Info("company researched",
		"company", result.CompanyName,
		"industry", result.BenchmarkIndustry,
		"confidence", string(result.DataQuality.OverallConfidence))
	return result, nil
}

// assess sanitises facts and runs the engine over them.
func (s *Service) assess(domain string, facts rawFacts) (*Result, calculator.Opportunity) {
	tables := s.engine.Tables()
	notes := nonNil(facts.EstimationNotes)

	revenue := facts.Revenue
	if math.IsNaN(revenue) || math.IsInf(revenue, 0) || revenue < 0 {
		notes = append(notes, "Reported revenue was invalid and has been set to 0.")
		revenue = 0
	}
	employees := facts.Employees
	if math.IsNaN(employees) || math.IsInf(employees, 0) || employees < 0 {
		notes = append(notes, "Reported employee count was invalid and has been set to 0.")
		employees = 0
	}
	headcount := int(math.Round(employees))

	industry := strings.TrimSpace(facts.Industry)
	// Model output is free text; the engine only matches exact table keys.
	benchmarkIndustry, ok := tables.CanonicalIndustry(industry)
	if !ok {
		benchmarkIndustry = benchmarks.DefaultIndustry
	}
	bench := tables.BenchmarkForIndustry(benchmarkIndustry)

	opp := s.engine.CompanyOpportunity(revenue, headcount, benchmarkIndustry, nil)
	impl := s.engine.ImplementationCost(float64(opp.ConservativeTarget))
	maint := s.engine.MaintenanceCost(impl)

	result := &Result{
		CompanyName:       strings.TrimSpace(facts.CompanyName),
		Domain:            domain,
		Description:       plainText(facts.Description),
		Industry:          industry,
		SubIndustry:       strings.TrimSpace(facts.SubIndustry),
		BenchmarkIndustry: benchmarkIndustry,
		Revenue:           revenue,
		RevenueSource:     normalizeSource(facts.RevenueSource),
		Employees:         headcount,
		EmployeesSource:   normalizeSource(facts.EmployeesSource),
		CompanySize:       opp.CompanySize,
		SGAPercent:        bench.Average,
		IndustryAvgSGA:    bench.Average,
		AnnualSGACost:     opp.CurrentSGA,
		Competitors:       sanitizeCompetitors(facts.Competitors),
		AIOpportunity: AIOpportunity{
			TotalOpportunity:   opp.TotalOpportunity,
			ConservativeTarget: opp.ConservativeTarget,
		},
		FiveYearProjection:    s.engine.FiveYearROI(float64(opp.ConservativeTarget), impl, maint),
		ImplementationCost:    int64(math.Floor(impl + 0.5)),
		MaintenanceCostAnnual: int64(math.Floor(maint + 0.5)),
		DataQuality: DataQuality{
			OverallConfidence:   overallConfidence(facts),
			PublicDataAvailable: facts.PublicDataAvailable,
			EstimationNotes:     notes,
		},
		ResearchedAt: s.now().UTC(),
	}
	return result, opp
}

type insight struct {
	Process   string `json:"process"`
	Rationale string `json:"rationale"`
}

// insights attaches rationales to the top processes. Numbers always come
// from the engine; only the text comes from the model.
func (s *Service) insights(ctx context.Context, log logger.Logger, r *Result, top []calculator.ProcessOpportunity) []ProcessInsight {
	out := make([]ProcessInsight, len(top))
	for i, p := range top {
		out[i] = ProcessInsight{
			Process:     p.Process,
			Opportunity: p.Opportunity,
			Confidence:  p.Confidence,
			Rationale:   fmt.Sprintf("AI can significantly reduce manual effort in %s.", strings.ToLower(p.Process)),
		}
	}
	if len(top) == 0 {
		return out
	}

	raw, err := s.provider.Complete(ctx, insightsPrompt(r.CompanyName, r.Industry, r.SubIndustry, top))
	if err != nil {
		s.health.RecordFailure("insights", r.Domain, err.Error())
		log.Warn("process rationales unavailable", "error", err.Error())
		return out
	}

	items, err := decodeInsights(raw)
	if err != nil {
		s.health.RecordFailure("insights", r.Domain, err.Error())
		log.Warn("process rationales unparseable", "error", err.Error())
		return out
	}
	s.health.RecordSuccess("insights")

	byName := make(map[string]string, len(items))
	for _, it := range items {
		byName[normalizeName(it.Process)] = it.Rationale
	}
	for i := range out {
		text, ok := byName[normalizeName(out[i].Process)]
		if !ok && i < len(items) {
			text = items[i].Rationale
		}
		if text = plainText(text); text != "" {
			out[i].Rationale = text
		} else {
			out[i].Rationale = fmt.Sprintf("Standard %s automation benefits apply.", strings.ToLower(out[i].Process))
		}
	}
	return out
}

// decodeInsights accepts {"insights": [...]} or a bare array.
func decodeInsights(raw string) ([]insight, error) {
	var envelope struct {
		Insights []insight `json:"insights"`
	}
	if err := decodeJSON(raw, &envelope); err == nil && len(envelope.Insights) > 0 {
		return envelope.Insights, nil
	}

	var items []insight
	if err := decodeJSON(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// QuickLookup checks whether domain looks like a real company. It fails
// closed: any error yields {valid: false}.
func (s *Service) QuickLookup(ctx context.Context, rawDomain string) QuickLookupResult {
	domain := CleanDomain(rawDomain)
	if domain == "" {
		return QuickLookupResult{}
	}

	raw, err := s.provider.Complete(ctx, lookupPrompt(domain))
	if err != nil {
		s.health.RecordFailure("lookup", domain, err.Error())
		s.logger.Warn("quick lookup failed", "domain", domain, "error", err.Error())
		return QuickLookupResult{}
	}

	var res QuickLookupResult
	if err := decodeJSON(raw, &res); err != nil {
		s.health.RecordFailure("lookup", domain, err.Error())
		return QuickLookupResult{}
	}
	s.health.RecordSuccess("lookup")

	if !res.Valid {
		return QuickLookupResult{}
	}
	res.CompanyName = strings.TrimSpace(res.CompanyName)
	res.Industry = strings.TrimSpace(res.Industry)
	return res
}

func normalizeSource(s string) Source {
	if strings.EqualFold(strings.TrimSpace(s), string(SourcePublic)) {
		return SourcePublic
	}
	return SourceEstimated
}

func normalizeMaturity(s string) AIMaturity {
	switch AIMaturity(strings.ToLower(strings.TrimSpace(s))) {
	case MaturityLeader:
		return MaturityLeader
	case MaturityAdopter:
		return MaturityAdopter
	default:
		return MaturityLaggard
	}
}

func sanitizeCompetitors(in []Competitor) []Competitor {
	out := make([]Competitor, 0, len(in))
	for _, c := range in {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		initiatives := make([]string, 0, len(c.KnownInitiatives))
		for _, it := range c.KnownInitiatives {
			if it = strings.TrimSpace(it); it != "" {
				initiatives = append(initiatives, it)
			}
		}
		out = append(out, Competitor{
			Name:             name,
			AIMaturity:       normalizeMaturity(string(c.AIMaturity)),
			KnownInitiatives: initiatives,
		})
	}
	return out
}

func overallConfidence(f rawFacts) benchmarks.Confidence {
	switch {
	case f.PublicDataAvailable && normalizeSource(f.RevenueSource) == SourcePublic:
		return benchmarks.ConfidenceHigh
	case f.PublicDataAvailable:
		return benchmarks.ConfidenceMedium
	default:
		return benchmarks.ConfidenceLow
	}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func nonNil(s []string) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
