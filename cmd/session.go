package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <resume.pdf>",
	Short: "Upload a resume and show how much text the server extracted",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt := setup()
		ctx := cmd.Context()

		if _, err := rt.waitReady(ctx, false); err != nil {
			rt.fatal("waiting for the server", err)
		}
		rt.uploadResume(ctx, args[0])

		if rt.out.JSON {
			rt.out.PrintJSON(rt.coach.Snapshot().Resume)
		}
	},
}

var matchCmd = &cobra.Command{
	Use:   "match <resume.pdf>",
	Short: "Match a resume against the skills of a target role",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt := setup()
		ctx := cmd.Context()
		role := mustFlag(rt, cmd, "role")

		if _, err := rt.waitReady(ctx, false); err != nil {
			rt.fatal("waiting for the server", err)
		}
		rt.uploadResume(ctx, args[0])
		if err := rt.matchSkills(ctx, role); err != nil {
			rt.fatal("matching skills", err)
		}

		if rt.out.JSON {
			rt.out.PrintJSON(rt.coach.Snapshot().Skill)
		}
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume.pdf>",
	Short: "Match skills for a role, then critique an answer to an interview question",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt := setup()
		ctx := cmd.Context()
		role := mustFlag(rt, cmd, "role")
		question, _ := cmd.Flags().GetString("question")
		answer, _ := cmd.Flags().GetString("answer")
		audio, _ := cmd.Flags().GetString("answer-audio")

		if strings.TrimSpace(answer) == "" && audio == "" {
			rt.logger.Fatal("an answer is required", zap.String("hint", "pass --answer or --answer-audio"))
		}

		cat, err := rt.waitReady(ctx, false)
		if err != nil {
			rt.fatal("waiting for the server", err)
		}

		if strings.TrimSpace(question) == "" {
			def, ok := cat.DefaultQuestion()
			if !ok {
				rt.logger.Fatal("no question given and the question bank is empty")
			}
			question = def.Text
		}

		if audio != "" {
			err := rt.step("Transcribing answer", func() error {
				var err error
				answer, err = rt.coach.Transcribe(ctx, audio)
				return err
			})
			if err != nil {
				rt.fatal("transcribing answer", err)
			}
		}

		rt.uploadResume(ctx, args[0])
		if err := rt.matchSkills(ctx, role); err != nil {
			rt.fatal("matching skills", err)
		}

		if !rt.out.JSON {
			rt.out.Title("Question: %s", question)
		}
		rt.analyze(ctx, question, answer)

		if rt.out.JSON {
			snap := rt.coach.Snapshot()
			rt.out.PrintJSON(map[string]any{
				"question": question,
				"answer":   answer,
				"skills":   snap.Skill.Result,
				"analysis": snap.Analysis.Result,
			})
		}
	},
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio>",
	Short: "Transcribe a recorded answer",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt := setup()
		ctx := cmd.Context()

		if _, err := rt.waitReady(ctx, false); err != nil {
			rt.fatal("waiting for the server", err)
		}

		var text string
		err := rt.step("Transcribing", func() error {
			var err error
			text, err = rt.coach.Transcribe(ctx, args[0])
			return err
		})
		if err != nil {
			rt.fatal("transcribing", err)
		}

		if rt.out.JSON {
			rt.out.PrintJSON(map[string]string{"transcription": text})
			return
		}
		rt.out.Println(text)
	},
}

func mustFlag(rt *runtime, cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	if strings.TrimSpace(value) == "" {
		rt.logger.Fatal("flag is required", zap.String("flag", name))
	}
	return strings.TrimSpace(value)
}

func init() {
	rootCmd.AddCommand(uploadCmd, matchCmd, analyzeCmd, transcribeCmd)

	matchCmd.Flags().StringP("role", "r", "", "target role, see the roles command")

	analyzeCmd.Flags().StringP("role", "r", "", "target role, see the roles command")
	analyzeCmd.Flags().StringP("question", "q", "", "question to answer (default is the first question of the bank)")
	analyzeCmd.Flags().StringP("answer", "a", "", "answer text")
	analyzeCmd.Flags().String("answer-audio", "", "audio file with a recorded answer, transcribed before analysis")
	analyzeCmd.MarkFlagsMutuallyExclusive("answer", "answer-audio")
}
