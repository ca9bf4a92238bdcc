package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/interview-prep/internal/catalog"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptAnswer       = "Answer a question"
	PromptChangeRole   = "Change target role"
	PromptChangeResume = "Upload another resume"
	PromptSkillReport  = "Show skill report"
	PromptReset        = "Start over"
	PromptExit         = "Exit"
	promptCustom       = "Type my own question"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptAnswer, PromptChangeRole, PromptSkillReport, PromptChangeResume, PromptReset, PromptExit},
}

var practiceCmd = &cobra.Command{
	Use:   "practice [resume.pdf]",
	Short: "Practice interactively: pick a role, answer questions and get feedback",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		practice(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)
}

func practice(ctx context.Context, args []string) {
	rt := setup()

	if !rt.out.Terminal().Interactive() {
		rt.logger.Fatal("practice needs an interactive terminal", zap.String("hint", "use the analyze command in scripts"))
	}

	cat, err := rt.waitReady(ctx, true)
	if err != nil {
		rt.fatal("waiting for the server", err)
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	if err := rt.chooseResume(ctx, path); err != nil {
		rt.logger.Info("exiting", zap.Error(err))
		return
	}
	if err := rt.chooseRole(ctx, cat); err != nil {
		rt.logger.Info("exiting", zap.Error(err))
		return
	}

	action := PromptAnswer
	for {
		if err := rt.handleAction(ctx, action, cat); err != nil {
			if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) {
				return
			}
			rt.reportError(action, err)
		}

		_, action, err = prompt.Run()
		if err != nil {
			rt.logger.Info("exiting", zap.Error(err))
			return
		}
	}
}

func (rt *runtime) handleAction(ctx context.Context, action string, cat *catalog.Catalog) error {
	switch action {
	case PromptAnswer:
		return rt.answerQuestion(ctx, cat)
	case PromptChangeRole:
		return rt.chooseRole(ctx, cat)
	case PromptChangeResume:
		if err := rt.chooseResume(ctx, ""); err != nil {
			return err
		}
		// Replacing the resume drops the previous role and its match.
		rt.out.Info("Pick a role to match the new resume")
		return rt.chooseRole(ctx, cat)
	case PromptSkillReport:
		report, err := rt.coach.SkillReport()
		if err != nil {
			return err
		}
		rt.out.SkillReport(report)
		return nil
	case PromptReset:
		rt.coach.Reset()
		if err := rt.chooseResume(ctx, ""); err != nil {
			return err
		}
		return rt.chooseRole(ctx, cat)
	case PromptExit:
		rt.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (rt *runtime) chooseResume(ctx context.Context, path string) error {
	for {
		if path == "" {
			p := promptui.Prompt{Label: "Resume PDF path", Validate: notBlank}
			var err error
			if path, err = p.Run(); err != nil {
				return err
			}
		}

		err := rt.step("Uploading resume", func() error {
			_, err := rt.coach.UploadResume(ctx, strings.TrimSpace(path))
			return err
		})
		if err == nil {
			profile := rt.coach.Snapshot().Resume
			rt.out.Success("Extracted %d characters from %s", len(profile.Text), profile.Name)
			return nil
		}

		rt.reportError("uploading resume", err)
		path = ""
	}
}

func (rt *runtime) chooseRole(ctx context.Context, cat *catalog.Catalog) error {
	var role string
	if len(cat.Roles) > 0 {
		sel := promptui.Select{Label: "Target role", Items: cat.Roles, Size: 10}
		var err error
		if _, role, err = sel.Run(); err != nil {
			return err
		}
	} else {
		rt.out.Warning("The server returned no roles")
		p := promptui.Prompt{Label: "Target role", Validate: notBlank}
		var err error
		if role, err = p.Run(); err != nil {
			return err
		}
	}

	if err := rt.matchSkills(ctx, role); err != nil {
		rt.reportError("matching skills", err)
	}
	return nil
}

func (rt *runtime) answerQuestion(ctx context.Context, cat *catalog.Catalog) error {
	items := append(cat.QuestionTexts(), promptCustom)
	sel := promptui.Select{Label: "Question", Items: items, Size: 10}
	_, question, err := sel.Run()
	if err != nil {
		return err
	}

	if question == promptCustom {
		p := promptui.Prompt{Label: "Your question", Validate: notBlank}
		if question, err = p.Run(); err != nil {
			return err
		}
	}

	rt.out.Title("Question: %s", question)
	p := promptui.Prompt{Label: "Your answer (or @path to a recording)", Validate: notBlank}
	answer, err := p.Run()
	if err != nil {
		return err
	}

	if audio, ok := strings.CutPrefix(strings.TrimSpace(answer), "@"); ok {
		err := rt.step("Transcribing answer", func() error {
			var err error
			answer, err = rt.coach.Transcribe(ctx, audio)
			return err
		})
		if err != nil {
			return err
		}
		rt.out.Muted("Transcribed: %s", answer)
	}

	err = rt.step("Analyzing answer", func() error {
		return rt.coach.Analyze(ctx, question, answer)
	})
	if err != nil {
		return err
	}

	snap := rt.coach.Snapshot().Analysis
	rt.out.Trace("Answer analysis", snap)
	rt.out.Result("Feedback", snap.Result)
	return nil
}

func (rt *runtime) reportError(msg string, err error) {
	rt.logger.Debug(msg, zap.Error(err))
	rt.out.Failure("%s", userMessage(msg, err))
}

func notBlank(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("must not be empty")
	}
	return nil
}
