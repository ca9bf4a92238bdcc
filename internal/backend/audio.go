package backend

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type TranscribeResponse struct {
	Transcription string `json:"transcription"`
}

// Transcribe uploads a recorded answer and returns its text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := c.postFile(ctx, c.url(transcribePath), filename, audio)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("transcribe audio: %w", newStatusError(resp))
	}

	var result TranscribeResponse
	if err := decodeBody(resp, &result); err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	return strings.TrimSpace(result.Transcription), nil
}
