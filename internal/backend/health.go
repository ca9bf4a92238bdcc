package backend

import (
	"context"
	"fmt"
)

const healthyStatus = "OK"

type HealthResponse struct {
	Status string `json:"status"`
}

// Health performs one liveness request. Any error means the server is not
// ready yet; callers bound the attempt with ctx.
func (c *Client) Health(ctx context.Context) error {
	var resp HealthResponse
	if err := c.getJSON(ctx, c.StreamClient, c.url(healthPath), &resp); err != nil {
		return err
	}

	if resp.Status != healthyStatus {
		return fmt.Errorf("server is not healthy: status %q", resp.Status)
	}

	return nil
}
