package backend

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPIURL    = "http://localhost:8000"
	defaultKeyHeader = "X-API-Key"
	userAgent        = "spigell/interview-prep"

	healthPath     = "/"
	questionsPath  = "/questions"
	rolesPath      = "/roles"
	uploadPath     = "/api/skills/upload_resume"
	matchPath      = "/api/skills/match_skills"
	analyzePath    = "/api/interview/analyze_stream"
	transcribePath = "/api/audio/transcribe"

	// Catalog and upload requests are plain request/response calls.
	requestTimeout = 60 * time.Second
)

type Client struct {
	apiKey    string
	logger    *zap.Logger
	APIURL    string
	KeyHeader string
	UserAgent string
	// HTTPClient serves request/response calls.
	HTTPClient *http.Client
	// StreamClient serves the NDJSON endpoints and carries no timeout:
	// a stream runs until the server closes it or the context is cancelled.
	StreamClient *http.Client
}

// New creates a backend client rooted at apiURL. An empty apiKey disables
// the shared-secret header.
func New(logger *zap.Logger, apiURL, apiKey string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return &Client{
		apiKey:    strings.TrimSpace(apiKey),
		logger:    logger,
		APIURL:    apiURL,
		KeyHeader: defaultKeyHeader,
		UserAgent: userAgent,
		HTTPClient: &http.Client{
			Timeout: requestTimeout,
		},
		StreamClient: &http.Client{},
	}
}

func (c *Client) url(path string) string {
	return c.APIURL + path
}
