// Package coach ties the practice flow together: it waits for the backend,
// loads the catalog, holds the resume and the selected role, and drives the
// skill match and answer analysis sessions.
package coach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spigell/interview-prep/internal/backend"
	"github.com/spigell/interview-prep/internal/catalog"
	"github.com/spigell/interview-prep/internal/health"
	"github.com/spigell/interview-prep/internal/resume"
	"github.com/spigell/interview-prep/internal/session"
	"github.com/spigell/interview-prep/internal/stream"
	"go.uber.org/zap"
)

var ErrNoResume = errors.New("upload a resume first")

// Backend is everything the coach needs from the server.
type Backend interface {
	health.Pinger
	catalog.Source
	session.SkillMatcher
	session.Analyzer
	UploadResume(ctx context.Context, filename string, content io.Reader) (*backend.UploadResponse, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

type Options struct {
	Health       health.Config
	MaxLogLength int

	// Observers run on the goroutine that drives the flow. They must not block.
	OnHealth   func(health.Snapshot)
	OnSkill    func(session.Snapshot)
	OnAnalysis func(session.Snapshot)
}

// Snapshot is a copy of everything the coach tracks.
type Snapshot struct {
	Health   health.Snapshot
	Catalog  *catalog.Catalog
	Resume   resume.Profile
	Role     string
	Skill    session.Snapshot
	Analysis session.Snapshot
}

type Coach struct {
	backend Backend
	opts    Options
	logger  *zap.Logger

	poller   *health.Poller
	loader   *catalog.Loader
	skill    *session.SkillMatch
	analysis *session.Analysis

	mu      sync.Mutex
	ready   bool
	catalog *catalog.Catalog
	profile resume.Profile
	role    string
}

func New(b Backend, opts Options, logger *zap.Logger) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}

	ingester := stream.New(logger, opts.MaxLogLength)

	poller := health.New(b, opts.Health, logger.Named("health"))
	poller.OnChange = opts.OnHealth

	return &Coach{
		backend:  b,
		opts:     opts,
		logger:   logger,
		poller:   poller,
		loader:   catalog.NewLoader(b, logger.Named("catalog")),
		skill:    session.NewSkillMatch(b, ingester, logger.Named("skills")),
		analysis: session.NewAnalysis(b, ingester, logger.Named("analysis")),
	}
}

// WaitReady blocks until the backend answers its health check. The first
// time it does, the catalog is loaded and a pending skill match is started.
func (c *Coach) WaitReady(ctx context.Context) (*catalog.Catalog, error) {
	if err := c.poller.Run(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.ready {
		cat := c.catalog
		c.mu.Unlock()
		return cat, nil
	}
	prev := c.inputsLocked()
	c.ready = true
	next := c.inputsLocked()
	c.mu.Unlock()

	cat := c.loader.Load(ctx)

	c.mu.Lock()
	c.catalog = cat
	c.mu.Unlock()

	if _, err := c.maybeMatch(ctx, prev, next); err != nil {
		return cat, err
	}

	return cat, nil
}

// Retry restarts health polling after a timeout.
func (c *Coach) Retry() {
	c.poller.Retry()
}

// UploadResume validates the file locally, uploads it and keeps the
// extracted text. Changing the resume alone never starts a skill match;
// replacing one clears the role and both session results.
func (c *Coach) UploadResume(ctx context.Context, path string) (resume.Profile, error) {
	f, err := resume.Open(path)
	if err != nil {
		return resume.Profile{}, err
	}

	upload, err := c.backend.UploadResume(ctx, f.Name, f.Reader())
	if err != nil {
		return resume.Profile{}, err
	}

	profile := resume.Profile{Name: upload.Filename, Text: upload.ExtractedText}

	c.mu.Lock()
	replaced := c.profile.IsSet()
	c.profile = profile
	if replaced {
		// Results of the previous resume must not travel with the new one,
		// and picking the same role again has to start a fresh match.
		c.role = ""
	}
	c.mu.Unlock()

	if replaced {
		c.skill.Reset()
		c.analysis.Reset()
	}

	c.logger.Info("resume uploaded",
		zap.String("filename", profile.Name),
		zap.Int("extracted_chars", len(profile.Text)),
	)

	return profile, nil
}

// SelectRole records the target role and, when the inputs allow it, runs a
// skill match for it. It reports whether a match was started.
func (c *Coach) SelectRole(ctx context.Context, role string) (bool, error) {
	role = strings.TrimSpace(role)

	c.mu.Lock()
	prev := c.inputsLocked()
	c.role = role
	next := c.inputsLocked()
	cat := c.catalog
	c.mu.Unlock()

	if cat != nil && len(cat.Roles) > 0 && role != "" && !cat.HasRole(role) {
		c.logger.Warn("role is not in the catalog", zap.String("target_role", role))
	}

	return c.maybeMatch(ctx, prev, next)
}

func (c *Coach) maybeMatch(ctx context.Context, prev, next session.Inputs) (bool, error) {
	if !session.ShouldStartSkillMatch(prev, next) {
		return false, nil
	}

	c.mu.Lock()
	name := c.profile.Name
	c.mu.Unlock()

	req := backend.MatchRequest{ResumeText: next.ResumeText, TargetRole: next.TargetRole, ResumeName: name}
	return true, c.skill.Run(ctx, req, c.opts.OnSkill)
}

// Analyze critiques answer to question using the latest skill match result.
func (c *Coach) Analyze(ctx context.Context, question, answer string) error {
	c.mu.Lock()
	profile, role := c.profile, c.role
	c.mu.Unlock()

	if !profile.IsSet() {
		return ErrNoResume
	}

	req := backend.AnalyzeRequest{
		ResumeText:    profile.Text,
		TargetRole:    role,
		Question:      question,
		StudentAnswer: answer,
		SkillData:     c.skill.Result(),
		ResumeName:    profile.Name,
	}

	return c.analysis.Run(ctx, req, c.opts.OnAnalysis)
}

// Transcribe turns a recorded answer into text.
func (c *Coach) Transcribe(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	return c.backend.Transcribe(ctx, filepath.Base(path), f)
}

// SkillReport decodes the latest skill match result.
func (c *Coach) SkillReport() (*session.SkillReport, error) {
	return c.skill.Report()
}

// Reset forgets the resume, the role and both session results. The health
// state and the catalog are kept.
func (c *Coach) Reset() {
	c.mu.Lock()
	c.profile = resume.Profile{}
	c.role = ""
	c.mu.Unlock()

	c.skill.Reset()
	c.analysis.Reset()
}

func (c *Coach) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		Catalog: c.catalog,
		Resume:  c.profile,
		Role:    c.role,
	}
	c.mu.Unlock()

	snap.Health = c.poller.Snapshot()
	snap.Skill = c.skill.Snapshot()
	snap.Analysis = c.analysis.Snapshot()
	return snap
}

func (c *Coach) inputsLocked() session.Inputs {
	return session.Inputs{ResumeText: c.profile.Text, TargetRole: c.role, Ready: c.ready}
}
