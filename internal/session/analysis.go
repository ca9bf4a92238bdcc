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

var (
	ErrAlreadyRunning     = errors.New("answer analysis is already running")
	ErrAnswerRequired     = errors.New("answer must not be empty")
	ErrSkillMatchRequired = errors.New("skill match result is required before analysis")
)

type Analyzer interface {
	AnalyzeAnswer(ctx context.Context, req backend.AnalyzeRequest) (io.ReadCloser, error)
}

// CheckAnalyze reports whether an analysis may be requested for answer
// given the latest skill match result.
func CheckAnalyze(answer string, skillResult map[string]any) error {
	if strings.TrimSpace(answer) == "" {
		return ErrAnswerRequired
	}
	if skillResult == nil {
		return ErrSkillMatchRequired
	}
	return nil
}

// CanAnalyze is CheckAnalyze as a predicate.
func CanAnalyze(answer string, skillResult map[string]any) bool {
	return CheckAnalyze(answer, skillResult) == nil
}

// Analysis critiques one answer. Partial payloads are merged into the result
// as they arrive; the final result replaces them.
type Analysis struct {
	client   Analyzer
	ingester *stream.Ingester
	logger   *zap.Logger
	st       state
}

func NewAnalysis(client Analyzer, ingester *stream.Ingester, logger *zap.Logger) *Analysis {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ingester == nil {
		ingester = stream.New(logger, 0)
	}

	a := &Analysis{client: client, ingester: ingester, logger: logger}
	a.st.logger = logger
	return a
}

// Run streams an analysis to completion. Without resume text it does
// nothing. A second Run while one is in flight fails with ErrAlreadyRunning.
func (a *Analysis) Run(ctx context.Context, req backend.AnalyzeRequest, onEvent func(Snapshot)) error {
	if strings.TrimSpace(req.ResumeText) == "" {
		a.logger.Debug("skipping analysis: no resume text")
		return nil
	}

	if err := CheckAnalyze(req.StudentAnswer, req.SkillData); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	gen, ok := a.st.tryBegin(cancel)
	if !ok {
		return ErrAlreadyRunning
	}
	defer a.st.finish(gen)

	log := logger.ForSession(a.logger, "analysis", req.TargetRole, req.ResumeName)
	log.Info("starting answer analysis")

	body, err := a.client.AnalyzeAnswer(runCtx, req)
	if err != nil {
		log.Warn("analysis request failed", zap.Error(err))
		return err
	}
	defer body.Close()

	err = a.ingester.Ingest(runCtx, body, func(ev stream.Event) {
		a.st.apply(gen, ev)
		if onEvent != nil {
			onEvent(a.st.snapshot())
		}
	})
	if err != nil {
		log.Warn("analysis stream ended with error", zap.Error(err))
		return fmt.Errorf("analysis stream: %w", err)
	}

	return nil
}

func (a *Analysis) Snapshot() Snapshot {
	return a.st.snapshot()
}

func (a *Analysis) Reset() {
	a.st.reset()
}
