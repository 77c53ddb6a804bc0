package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/p-shah256/careerfit/internal/cleaner"
	"github.com/p-shah256/careerfit/pkg/types"
)

const analyzeTimeout = 60 * time.Second

// AnalyzeResume extracts the structured candidate profile from raw resume
// text. The profile drives both the quick filter (target titles, hard
// filters) and the scoring prompt.
func (c *Client) AnalyzeResume(ctx context.Context, resumeText string) (*types.CandidateProfile, error) {
	logger := slog.With("component", "llm", "operation", "analyze_resume")

	prompt := `Analyze this resume and produce a structured candidate profile. Return valid JSON only:
{
  "yearsExperience": "total years of experience (e.g. \"7\", \"5-7\")",
  "seniorityLevel": "one of: Entry, Mid, Senior, Manager, Director, VP",
  "education": {
    "highestDegree": "e.g. \"MBA\", \"BS\", \"MS\", \"PhD\", \"High School\"",
    "field": "field of study",
    "schools": ["schools attended"]
  },
  "experience": [
    {"title": "job title", "company": "company", "years": 2.5, "highlights": ["2-3 achievements with metrics"]}
  ],
  "functions": ["types of work, e.g. \"Product Management\""],
  "industries": ["industries worked in"],
  "hardSkills": [{"skill": "SQL", "context": "how they used it with scale/impact", "years": 4}],
  "softSkills": ["leadership and interpersonal skills"],
  "certifications": ["professional certifications"],
  "topAchievements": ["3-5 most impressive resume bullets with metrics"],
  "targetTitles": ["5-10 job titles this person should search for"],
  "searchQueries": ["3-5 Boolean search strings for job boards"],
  "keywords": ["10-15 keywords that should appear in matching job descriptions"],
  "hardFilters": {
    "maxYearsRequired": candidate years + 2,
    "excludeTitles": ["titles too senior for this candidate"],
    "excludeRequirements": ["requirements candidate cannot meet, e.g. \"PhD\", \"CPA\""]
  }
}

Include experience entries most recent first, at most 4 roles.

Resume:
` + resumeText

	callCtx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()

	start := time.Now()
	content, err := c.generate(callCtx, "You are a precise resume analyst. Extract only what the resume supports. Respond with JSON only.", prompt)
	if err != nil {
		logger.Error("resume analysis failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("resume analysis failed: %w", err)
	}
	logger.Info("received LLM response", "duration_ms", time.Since(start).Milliseconds())

	clean := cleaner.CleanLLMResponse(content)
	var profile types.CandidateProfile
	if err := json.Unmarshal([]byte(clean), &profile); err != nil {
		logger.Error("JSON parsing failed", "error", err, "content_preview", clean[:min(100, len(clean))])
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	profile.AnalyzedAt = time.Now().UTC()
	return &profile, nil
}
