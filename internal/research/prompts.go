package research

import (
	"fmt"
	"strings"

	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
)

const factsSystem = "You are a financial analyst. Return only valid JSON, no markdown code blocks or additional text."

func factsPrompt(domain string, industries []string, site SiteSnapshot) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Research the company with domain: %s\n\n", domain)
	if !site.Empty() {
		b.WriteString("The company's home page says:\n")
		if site.SiteName != "" {
			fmt.Fprintf(&b, "- site name: %s\n", site.SiteName)
		}
		if site.Title != "" {
			fmt.Fprintf(&b, "- title: %s\n", site.Title)
		}
		if site.Description != "" {
			fmt.Fprintf(&b, "- description: %s\n", site.Description)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, `Use publicly available data. Where exact figures are not public, give conservative estimates.

Return a JSON object:
{
  "companyName": "full company name",
  "industry": "one of: %s",
  "subIndustry": "more specific sub-industry",
  "revenue": annual revenue in USD as a number,
  "revenueSource": "public" or "estimated",
  "employees": employee count as a number,
  "employeesSource": "public" or "estimated",
  "description": "1-2 sentence description",
  "competitors": [{"name": "...", "aiMaturity": "leader" | "adopter" | "laggard", "knownInitiatives": ["..."]}],
  "publicDataAvailable": true or false,
  "estimationNotes": ["notes on any estimates"]
}

Use lower-bound revenue estimates. For private companies estimate from employee count
(revenue per employee: Technology $300-500K, Services $150-250K, Manufacturing $200-350K).`,
		strings.Join(industries, ", "))

	return Prompt{System: factsSystem, User: b.String(), JSON: true}
}

const insightsSystem = "You are an AI automation consultant. Return only valid JSON."

func insightsPrompt(companyName, industry, subIndustry string, top []calculator.ProcessOpportunity) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "For %s in the %s industry (%s), give a one-sentence, industry-specific rationale for automating each process:\n\n",
		companyName, industry, subIndustry)
	for _, p := range top {
		fmt.Fprintf(&b, "- %s: %s opportunity\n", p.Process, calculator.FormatCurrency(float64(p.Opportunity), false))
	}
	b.WriteString(`
Return JSON: {"insights": [{"process": "process name", "rationale": "rationale"}]}`)

	return Prompt{System: insightsSystem, User: b.String(), JSON: true}
}

const lookupSystem = "You are a company lookup service. Return only valid JSON."

func lookupPrompt(domain string) Prompt {
	return Prompt{
		System: lookupSystem,
		User: fmt.Sprintf(`Is %q a valid company domain? Return JSON: {"valid": true or false, "companyName": "name if valid", "industry": "industry if valid"}`,
			domain),
		JSON: true,
	}
}
