package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/p-shah256/careerfit/internal/cleaner"
	"github.com/p-shah256/careerfit/pkg/types"
)

// SummarizeRole produces the structured role digest for a posting, used by
// the "summarize only" action. No fit score is involved.
func (c *Client) SummarizeRole(ctx context.Context, jobHTML string) (*types.RoleSummary, error) {
	content := cleaner.CleanHTML(jobHTML)

	prompt := `Summarize this job posting. Return valid JSON only:
{
  "yearsRequired": "years of experience the posting asks for (e.g. \"5+\", \"3-5\", \"not stated\")",
  "managerType": "people manager / individual contributor / player-coach",
  "function": "the core function of the role (e.g. \"Product Management\")",
  "uniqueRequirements": ["requirements unusual for this kind of role"]
}

Job posting:
` + content

	callCtx, cancel := context.WithTimeout(ctx, scoreTimeout)
	defer cancel()

	resp, err := c.generate(callCtx, "You are a precise job posting summarizer. Respond with JSON only.", prompt)
	if err != nil {
		return nil, fmt.Errorf("role summary failed: %w", err)
	}

	var summary types.RoleSummary
	if err := json.Unmarshal([]byte(cleaner.CleanLLMResponse(resp)), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &summary, nil
}
