package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spigell/interview-prep/internal/backend"
	"github.com/spigell/interview-prep/internal/logger"
	"github.com/spigell/interview-prep/internal/stream"
	"go.uber.org/zap"
)

const initializingMessage = "Initializing..."

var ErrIncompleteInput = errors.New("resume text and target role are required")

type SkillMatcher interface {
	MatchSkills(ctx context.Context, req backend.MatchRequest) (io.ReadCloser, error)
}

// SkillMatch compares the resume against the expected skills of a role.
// Starting a new run cancels the one in flight: its result would describe a
// role that is no longer selected.
type SkillMatch struct {
	client   SkillMatcher
	ingester *stream.Ingester
	logger   *zap.Logger
	st       state
}

func NewSkillMatch(client SkillMatcher, ingester *stream.Ingester, logger *zap.Logger) *SkillMatch {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ingester == nil {
		ingester = stream.New(logger, 0)
	}

	s := &SkillMatch{client: client, ingester: ingester, logger: logger}
	s.st.logger = logger
	return s
}

// Run streams a skill match to completion. OnEvent, when non-nil, is called
// after every applied event with the new snapshot.
func (s *SkillMatch) Run(ctx context.Context, req backend.MatchRequest, onEvent func(Snapshot)) error {
	if strings.TrimSpace(req.ResumeText) == "" || strings.TrimSpace(req.TargetRole) == "" {
		return ErrIncompleteInput
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	gen := s.st.begin(cancel, initializingMessage)
	defer s.st.finish(gen)

	log := logger.ForSession(s.logger, "skill_match", req.TargetRole, req.ResumeName)
	log.Info("starting skill match")

	body, err := s.client.MatchSkills(runCtx, req)
	if err != nil {
		log.Warn("skill match request failed", zap.Error(err))
		return err
	}
	defer body.Close()

	err = s.ingester.Ingest(runCtx, body, func(ev stream.Event) {
		s.st.apply(gen, ev)
		if onEvent != nil {
			onEvent(s.st.snapshot())
		}
	})
	if err != nil {
		log.Warn("skill match stream ended with error", zap.Error(err))
		return fmt.Errorf("skill match stream: %w", err)
	}

	if !s.Snapshot().Completed {
		log.Warn("skill match stream ended without a result")
	}

	return nil
}

func (s *SkillMatch) Snapshot() Snapshot {
	return s.st.snapshot()
}

// Result returns the final payload, or nil when no result arrived yet.
func (s *SkillMatch) Result() map[string]any {
	snap := s.st.snapshot()
	if !snap.Completed {
		return nil
	}
	return snap.Result
}

// Report decodes the final result into matched and missing skills.
func (s *SkillMatch) Report() (*SkillReport, error) {
	result := s.Result()
	if result == nil {
		return nil, errors.New("skill match has no result")
	}
	return DecodeSkillReport(result)
}

// Reset cancels any run and returns the session to idle.
func (s *SkillMatch) Reset() {
	s.st.reset()
}
