package backend

import (
	"context"
	"fmt"
	"io"
)

type AnalyzeRequest struct {
	ResumeText    string         `json:"resume_text"`
	TargetRole    string         `json:"target_role"`
	Question      string         `json:"question"`
	StudentAnswer string         `json:"student_answer"`
	SkillData     map[string]any `json:"skill_data"`
	// ResumeName is the uploaded file name. It is only logged, never sent.
	ResumeName string `json:"-"`
}

// AnalyzeAnswer opens the answer-analysis NDJSON stream. The caller owns the body.
func (c *Client) AnalyzeAnswer(ctx context.Context, req AnalyzeRequest) (io.ReadCloser, error) {
	body, err := c.postStream(ctx, c.url(analyzePath), req)
	if err != nil {
		return nil, fmt.Errorf("analyze answer: %w", err)
	}

	return body, nil
}
