package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spigell/interview-prep/internal/backend"
	"github.com/spigell/interview-prep/internal/catalog"
	"github.com/spigell/interview-prep/internal/coach"
	"github.com/spigell/interview-prep/internal/health"
	"github.com/spigell/interview-prep/internal/logger"
	"github.com/spigell/interview-prep/internal/output"
	"github.com/spigell/interview-prep/internal/secrets"
	"github.com/spigell/interview-prep/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var errServerTimeout = errors.New("server did not become ready")

// runtime is what every backend command needs.
type runtime struct {
	logger *zap.Logger
	config *Config
	out    *output.Writer
	client *backend.Client
	coach  *coach.Coach

	health chan health.Snapshot
	// spin is the spinner of the step in progress, if any.
	spin *output.Spinner
}

func setup() *runtime {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting the interview-prep", zap.String("version", version), zap.String("api_url", config.API.URL))

	rt := &runtime{
		logger: logger,
		config: config,
		out:    output.Default(),
		health: make(chan health.Snapshot, 16),
	}
	rt.out.JSON = strings.EqualFold(config.Output, "json")

	key, origin, err := secrets.LoadWithOrigin(secrets.Source{
		Name:    "api key",
		Value:   config.API.Key,
		File:    config.API.KeyFile,
		Keyring: config.API.Keyring,
	})
	switch {
	case err == nil:
		logger.Debug("api key loaded", zap.String("origin", string(origin)))
	case strings.TrimSpace(config.API.KeyFile) != "":
		logger.Fatal(
			"loading api key",
			zap.Error(err),
			zap.String("hint", "check INTERVIEW_API_KEY_FILE or the 'api.key-file' key in the configuration file"),
		)
	default:
		logger.Debug("no api key configured, requests are sent without one", zap.Error(err))
	}

	rt.client = backend.New(logger.Named("backend"), config.API.URL, key)
	if config.API.KeyHeader != "" {
		rt.client.KeyHeader = config.API.KeyHeader
	}
	if config.API.UserAgent != "" {
		rt.client.UserAgent = config.API.UserAgent
	}

	rt.coach = coach.New(rt.client, coach.Options{
		Health:       config.Health,
		MaxLogLength: config.MaxLogLength,
		OnHealth:     rt.onHealth,
		OnSkill:      rt.onSession,
		OnAnalysis:   rt.onSession,
	}, logger)

	return rt
}

func (rt *runtime) onHealth(snap health.Snapshot) {
	if snap.Status == health.StatusTimeout {
		// waitReady is always listening while the poller runs.
		rt.health <- snap
		return
	}
	select {
	case rt.health <- snap:
	default:
	}
}

func (rt *runtime) onSession(snap session.Snapshot) {
	if rt.spin == nil {
		return
	}
	if lines := snap.TraceFor(snap.Step); len(lines) > 0 {
		rt.spin.UpdateMessage(lines[len(lines)-1])
	}
}

// waitReady blocks until the backend is up. After a timeout it asks whether
// to retry when interactive is set, and gives up otherwise.
func (rt *runtime) waitReady(ctx context.Context, interactive bool) (*catalog.Catalog, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		catalog *catalog.Catalog
		err     error
	}
	done := make(chan result, 1)
	go func() {
		cat, err := rt.coach.WaitReady(ctx)
		done <- result{cat, err}
	}()

	spin := rt.out.Spinner("Checking the server")
	spin.Start()

	for {
		select {
		case snap := <-rt.health:
			if snap.Status != health.StatusTimeout {
				spin.UpdateMessage(output.BannerText(snap))
				continue
			}

			spin.StopWithFailure(output.BannerText(snap))
			if !interactive || !confirm("Retry waking the server") {
				cancel()
				<-done
				return nil, errServerTimeout
			}

			spin = rt.out.Spinner("Retrying")
			spin.Start()
			rt.coach.Retry()
		case r := <-done:
			if r.err != nil {
				spin.StopWithFailure("")
				return nil, r.err
			}
			spin.StopWithSuccess(output.BannerText(health.Snapshot{Status: health.StatusReady}))
			return r.catalog, nil
		}
	}
}

// step runs fn under a spinner that follows session progress.
func (rt *runtime) step(message string, fn func() error) error {
	rt.spin = rt.out.Spinner(message)
	rt.spin.Start()
	defer func() { rt.spin = nil }()

	if err := fn(); err != nil {
		rt.spin.StopWithFailure("")
		return err
	}
	rt.spin.Stop()
	return nil
}

// fatal reports err to the user and exits. Backend validation messages are
// shown verbatim.
func (rt *runtime) fatal(msg string, err error) {
	rt.out.Failure("%s", userMessage(msg, err))
	rt.logger.Fatal(msg, zap.Error(err))
}

func userMessage(msg string, err error) string {
	if v, ok := backend.IsValidation(err); ok {
		return v.Detail
	}
	return fmt.Sprintf("%s: %v", msg, err)
}

func (rt *runtime) uploadResume(ctx context.Context, path string) {
	err := rt.step("Uploading resume", func() error {
		_, err := rt.coach.UploadResume(ctx, path)
		return err
	})
	if err != nil {
		rt.fatal("uploading resume", err)
	}

	if !rt.out.JSON {
		profile := rt.coach.Snapshot().Resume
		rt.out.Success("Extracted %d characters from %s", len(profile.Text), profile.Name)
	}
}

// matchSkills selects role and renders the match it starts.
func (rt *runtime) matchSkills(ctx context.Context, role string) error {
	var started bool
	err := rt.step(fmt.Sprintf("Matching skills for %s", role), func() error {
		var err error
		started, err = rt.coach.SelectRole(ctx, role)
		return err
	})
	if err != nil {
		return err
	}
	if !started {
		rt.logger.Debug("skill match not started", zap.String("target_role", role))
		return nil
	}

	snap := rt.coach.Snapshot().Skill
	if rt.out.JSON {
		return nil
	}

	rt.out.Trace("Skill match", snap)
	report, err := rt.coach.SkillReport()
	if err != nil {
		rt.out.Warning("Skill match finished without a result")
		return nil
	}
	rt.out.SkillReport(report)
	return nil
}

func (rt *runtime) analyze(ctx context.Context, question, answer string) {
	err := rt.step("Analyzing answer", func() error {
		return rt.coach.Analyze(ctx, question, answer)
	})
	if err != nil {
		rt.fatal("analyzing answer", err)
	}

	if rt.out.JSON {
		return
	}

	snap := rt.coach.Snapshot().Analysis
	rt.out.Trace("Answer analysis", snap)
	if !snap.Completed {
		rt.out.Warning("Analysis finished without a final result")
	}
	rt.out.Result("Feedback", snap.Result)
}

func confirm(label string) bool {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	return err == nil
}
