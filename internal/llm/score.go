package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/p-shah256/careerfit/internal/cleaner"
	"github.com/p-shah256/careerfit/pkg/types"
)

const scoreTimeout = 30 * time.Second

// ScoreJob scores one job candidate against the candidate profile,
// returning a fit score from 1 (poor) to 5 (excellent) with reasoning,
// strengths and gaps. The call carries its own timeout; callers do not need
// to wrap it.
func (c *Client) ScoreJob(ctx context.Context, job types.JobCandidate, profile *types.CandidateProfile) (*types.FitAnalysis, error) {
	logger := slog.With("component", "llm", "operation", "score_job", "title", job.Title)

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidate profile: %w", err)
	}

	prompt := fmt.Sprintf(`You are an expert career coach. Assess how well this candidate fits the job below.

Candidate profile:
%s

Job:
- Title: %s
- Company: %s
- Location: %s
- Link: %s

Return valid JSON only, with this structure:
{
  "fitScore": 1-5 (1=Poor Fit, 5=Excellent Fit),
  "reasoning": "brief explanation for the score in one paragraph",
  "strengths": ["2-3 key strengths from the profile that align with the job"],
  "gaps": ["1-2 key gaps where the profile is weaker for this role"],
  "disqualifiers": ["hard requirements the candidate clearly cannot meet, if any"],
  "recommendation": "one-line verdict: apply / stretch / skip"
}`, string(profileJSON), job.Title, job.Company, job.Location, job.Link)

	callCtx, cancel := context.WithTimeout(ctx, scoreTimeout)
	defer cancel()

	start := time.Now()
	content, err := c.generate(callCtx, "You are an expert career coach. Analyze candidate-job fit and respond with JSON only.", prompt)
	if err != nil {
		logger.Error("job scoring failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("job scoring failed: %w", err)
	}
	logger.Info("received LLM response", "duration_ms", time.Since(start).Milliseconds())

	analysis, err := parseFitAnalysis(cleaner.CleanLLMResponse(content))
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// parseFitAnalysis decodes the model's JSON, falling back to field-by-field
// recovery when strict decoding fails, and normalizes out-of-range scores
// the same way the scoring UI always has: anything invalid becomes a 3.
func parseFitAnalysis(raw string) (*types.FitAnalysis, error) {
	var analysis types.FitAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		if !gjson.Valid(raw) {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
		analysis = types.FitAnalysis{
			FitScore:       int(gjson.Get(raw, "fitScore").Int()),
			Reasoning:      gjson.Get(raw, "reasoning").String(),
			Recommendation: gjson.Get(raw, "recommendation").String(),
		}
		for _, s := range gjson.Get(raw, "strengths").Array() {
			analysis.Strengths = append(analysis.Strengths, s.String())
		}
		for _, g := range gjson.Get(raw, "gaps").Array() {
			analysis.Gaps = append(analysis.Gaps, g.String())
		}
		for _, d := range gjson.Get(raw, "disqualifiers").Array() {
			analysis.Disqualifiers = append(analysis.Disqualifiers, d.String())
		}
	}

	if analysis.FitScore < 1 || analysis.FitScore > 5 {
		slog.Warn("fit score out of range, defaulting", "score", analysis.FitScore)
		analysis.FitScore = 3
	}
	if analysis.Reasoning == "" {
		analysis.Reasoning = "Unable to generate detailed reasoning for this job analysis."
	}
	return &analysis, nil
}
