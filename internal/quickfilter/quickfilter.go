// Package quickfilter is the deterministic pre-screen that runs before any
// scoring call. Cheap string heuristics only; its whole job is to shrink
// the set sent to the rate-limited LLM step.
package quickfilter

import (
	"strings"

	"github.com/p-shah256/careerfit/pkg/types"
)

const (
	ReasonExcludedCompany = "Excluded company"
	ReasonTooSenior       = "Too senior (Director+)"
	ReasonPhDRequired     = "PhD required"
	ReasonTitleMismatch   = "Title mismatch"
	ReasonPassed          = "Passed quick filter"
)

// seniorityKeywords knock out Director+ roles when SkipDirectorPlus is set.
var seniorityKeywords = []string{
	"director", "vp", "vice president", "head of",
	"chief", "cto", "cfo", "ceo", "coo",
}

// Apply evaluates the ordered knockout rules against one candidate.
// First failing rule wins; there is no cumulative scoring.
func Apply(c types.JobCandidate, profile *types.CandidateProfile, filters *types.HardFilters) types.QuickFilterResult {
	title := strings.ToLower(c.Title)
	company := strings.ToLower(c.Company)

	if filters != nil {
		for _, excluded := range filters.ExcludeCompanies {
			if excluded == "" {
				continue
			}
			if strings.Contains(company, strings.ToLower(excluded)) {
				return types.QuickFilterResult{Pass: false, Reason: ReasonExcludedCompany}
			}
		}

		if filters.SkipDirectorPlus {
			for _, kw := range seniorityKeywords {
				if strings.Contains(title, kw) {
					return types.QuickFilterResult{Pass: false, Reason: ReasonTooSenior}
				}
			}
		}

		if filters.SkipPhD && (strings.Contains(title, "phd") || strings.Contains(title, "ph.d")) {
			return types.QuickFilterResult{Pass: false, Reason: ReasonPhDRequired}
		}
	}

	if profile != nil && len(profile.TargetTitles) > 0 {
		if !matchesTargetTitles(title, profile.TargetTitles) {
			return types.QuickFilterResult{Pass: false, Reason: ReasonTitleMismatch}
		}
	}

	return types.QuickFilterResult{Pass: true, Reason: ReasonPassed}
}

// matchesTargetTitles tokenizes each target title on whitespace and keeps
// tokens longer than 3 characters; one token appearing in the candidate
// title is enough. A target title with no token above the length cutoff
// contributes no matching power at all.
func matchesTargetTitles(candidateTitle string, targetTitles []string) bool {
	for _, target := range targetTitles {
		for _, token := range strings.Fields(strings.ToLower(target)) {
			if len(token) <= 3 {
				continue
			}
			if strings.Contains(candidateTitle, token) {
				return true
			}
		}
	}
	return false
}

// Partition splits candidates into those that survive the quick filter and
// those knocked out, preserving input order in both halves.
func Partition(candidates []types.JobCandidate, profile *types.CandidateProfile, filters *types.HardFilters) (passed []types.JobCandidate, skipped []types.SkippedCandidate) {
	for _, c := range candidates {
		res := Apply(c, profile, filters)
		if res.Pass {
			passed = append(passed, c)
		} else {
			skipped = append(skipped, types.SkippedCandidate{Candidate: c, Reason: res.Reason})
		}
	}
	return passed, skipped
}
