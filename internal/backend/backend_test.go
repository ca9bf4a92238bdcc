package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(zap.NewNop(), srv.URL, "secret")
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK, body: `{"status":"OK"}`},
		{name: "not ok body", status: http.StatusOK, body: `{"status":"starting"}`, wantErr: true},
		{name: "lowercase ok", status: http.StatusOK, body: `{"status":"ok"}`, wantErr: true},
		{name: "padded ok", status: http.StatusOK, body: `{"status":" OK "}`, wantErr: true},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`, wantErr: true},
		{name: "garbage", status: http.StatusOK, body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != healthPath {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			err := client.Health(context.Background())
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSharedSecretHeader(t *testing.T) {
	t.Parallel()

	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(defaultKeyHeader)
		io.WriteString(w, `[]`)
	})

	if _, err := client.Roles(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "secret" {
		t.Fatalf("expected shared secret header, got %q", got)
	}
}

func TestNoSecretHeaderWhenKeyEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header[http.CanonicalHeaderKey(defaultKeyHeader)]; ok {
			t.Errorf("did not expect %s header", defaultKeyHeader)
		}
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	client := New(nil, srv.URL+"/", "  ")
	if client.APIURL != srv.URL {
		t.Fatalf("expected trailing slash trimmed, got %q", client.APIURL)
	}
	if _, err := client.Roles(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQuestionsDecodesMixedIDs(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, `[{"id": 2, "text": "Tell me about yourself"}, {"id": "q-7", "text": "Why us?"}]`)
		gz.Close()
	})

	questions, err := client.Questions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].ID != "2" || questions[0].Text != "Tell me about yourself" {
		t.Fatalf("unexpected first question: %+v", questions[0])
	}
	if questions[1].ID != "q-7" {
		t.Fatalf("unexpected second question id: %q", questions[1].ID)
	}
}

func TestUploadResume(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != uploadPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("reading form file: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "%PDF-1.4 body" {
			t.Errorf("unexpected file content %q", data)
		}
		json.NewEncoder(w).Encode(UploadResponse{ExtractedText: "Go developer", Filename: header.Filename})
	})

	upload, err := client.UploadResume(context.Background(), "cv.pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upload.ExtractedText != "Go developer" || upload.Filename != "cv.pdf" {
		t.Fatalf("unexpected upload response: %+v", upload)
	}
}

func TestUploadResumeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "validation detail",
			status: http.StatusBadRequest,
			body:   `{"detail": "The file does not look like a resume."}`,
			check: func(t *testing.T, err error) {
				v, ok := IsValidation(err)
				if !ok {
					t.Fatalf("expected validation error, got %v", err)
				}
				if v.Detail != "The file does not look like a resume." {
					t.Fatalf("unexpected detail %q", v.Detail)
				}
			},
		},
		{
			name:   "validation list",
			status: http.StatusBadRequest,
			body:   `{"detail": [{"msg": "field required"}, {"msg": "bad type"}]}`,
			check: func(t *testing.T, err error) {
				v, ok := IsValidation(err)
				if !ok || v.Detail != "field required; bad type" {
					t.Fatalf("unexpected error %v", err)
				}
			},
		},
		{
			name:   "bad request with plain body",
			status: http.StatusBadRequest,
			body:   "  Resume could not be parsed\n",
			check: func(t *testing.T, err error) {
				v, ok := IsValidation(err)
				if !ok || v.Detail != "Resume could not be parsed" {
					t.Fatalf("expected body as validation detail, got %v", err)
				}
			},
		},
		{
			name:   "bad request with json but no detail",
			status: http.StatusBadRequest,
			body:   `{"error":"unsupported"}`,
			check: func(t *testing.T, err error) {
				v, ok := IsValidation(err)
				if !ok || v.Detail != `{"error":"unsupported"}` {
					t.Fatalf("expected body as validation detail, got %v", err)
				}
			},
		},
		{
			name:   "bad request with empty body",
			status: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) || statusErr.Code != http.StatusBadRequest {
					t.Fatalf("expected status error, got %v", err)
				}
				if _, ok := IsValidation(err); ok {
					t.Fatalf("did not expect validation error")
				}
			},
		},
		{
			name:   "too large",
			status: http.StatusRequestEntityTooLarge,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrPayloadTooLarge) {
					t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
				}
			},
		},
		{
			name:   "generic",
			status: http.StatusInternalServerError,
			body:   `boom`,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) || statusErr.Body != "boom" {
					t.Fatalf("expected status error with body, got %v", err)
				}
				if _, ok := IsValidation(err); ok {
					t.Fatalf("did not expect validation error")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.UploadResume(context.Background(), "cv.pdf", strings.NewReader("%PDF"))
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestMatchSkillsStreamsBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req MatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResumeText != "resume" || req.TargetRole != "Backend Engineer" {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", ndjsonType)
		io.WriteString(w, "{\"step\":1,\"message\":\"parsing\"}\n")
		w.(http.Flusher).Flush()
		io.WriteString(w, "{\"type\":\"result\",\"data\":{}}\n")
	})

	body, err := client.MatchSkills(context.Background(), MatchRequest{ResumeText: "resume", TargetRole: "Backend Engineer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if lines := bytes.Count(data, []byte("\n")); lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}

func TestAnalyzeAnswerBadStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req AnalyzeRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.SkillData["matched_skills"] == nil {
			t.Errorf("expected skill data to be forwarded")
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.AnalyzeAnswer(context.Background(), AnalyzeRequest{
		ResumeText: "resume",
		SkillData:  map[string]any{"matched_skills": []any{"Go"}},
	})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized status error, got %v", err)
	}
}

func TestTranscribe(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != transcribePath {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected file part: %v", err)
		}
		io.WriteString(w, `{"transcription": "  I led the migration.  "}`)
	})

	text, err := client.Transcribe(context.Background(), "answer.webm", strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "I led the migration." {
		t.Fatalf("unexpected transcription %q", text)
	}
}
