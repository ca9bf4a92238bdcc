package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

type UploadResponse struct {
	ExtractedText string `json:"extracted_text"`
	Filename      string `json:"filename"`
}

// UploadResume sends the resume file and returns the text the server extracted.
func (c *Client) UploadResume(ctx context.Context, filename string, content io.Reader) (*UploadResponse, error) {
	resp, err := c.postFile(ctx, c.url(uploadPath), filename, content)
	if err != nil {
		return nil, fmt.Errorf("upload resume: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode/100 == 2:
	case resp.StatusCode == http.StatusBadRequest:
		statusErr := newStatusError(resp)
		detail := detailFrom(statusErr.Body)
		if detail == "" {
			// Rejections are shown to the user even without a structured detail.
			detail = statusErr.Body
		}
		if detail == "" {
			return nil, fmt.Errorf("upload resume: %w", statusErr)
		}
		return nil, &ValidationError{Code: resp.StatusCode, Detail: detail}
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return nil, ErrPayloadTooLarge
	default:
		return nil, fmt.Errorf("upload resume: %w", newStatusError(resp))
	}

	var upload UploadResponse
	if err := decodeBody(resp, &upload); err != nil {
		return nil, fmt.Errorf("upload resume: %w", err)
	}

	if upload.Filename == "" {
		upload.Filename = filename
	}

	return &upload, nil
}

// IsValidation reports whether err carries a message for the user.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
