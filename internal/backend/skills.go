package backend

import (
	"context"
	"fmt"
	"io"
)

type MatchRequest struct {
	ResumeText string `json:"resume_text"`
	TargetRole string `json:"target_role"`
	// ResumeName is the uploaded file name. It is only logged, never sent.
	ResumeName string `json:"-"`
}

// MatchSkills opens the skill-match NDJSON stream. The caller owns the body.
func (c *Client) MatchSkills(ctx context.Context, req MatchRequest) (io.ReadCloser, error) {
	body, err := c.postStream(ctx, c.url(matchPath), req)
	if err != nil {
		return nil, fmt.Errorf("match skills: %w", err)
	}

	return body, nil
}
