package cmd

import (
	"context"

	"github.com/spigell/interview-prep/internal/catalog"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Wait until the backend is awake",
	Run: func(cmd *cobra.Command, _ []string) {
		rt := setup()
		if _, err := rt.waitReady(cmd.Context(), false); err != nil {
			rt.fatal("waiting for the server", err)
		}

		if rt.out.JSON {
			rt.out.PrintJSON(rt.coach.Snapshot().Health)
		}
	},
}

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the question bank",
	Run: func(cmd *cobra.Command, _ []string) {
		rt := setup()
		cat := rt.mustCatalog(cmd.Context())

		if rt.out.JSON {
			rt.out.PrintJSON(cat.Questions)
			return
		}
		if len(cat.Questions) == 0 {
			rt.out.Warning("No questions available")
			return
		}
		for _, q := range cat.Questions {
			rt.out.Print("%s\t%s\n", q.ID, q.Text)
		}
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the target roles",
	Run: func(cmd *cobra.Command, _ []string) {
		rt := setup()
		cat := rt.mustCatalog(cmd.Context())

		if rt.out.JSON {
			rt.out.PrintJSON(cat.Roles)
			return
		}
		if len(cat.Roles) == 0 {
			rt.out.Warning("No roles available")
			return
		}
		for _, role := range cat.Roles {
			rt.out.Println(role)
		}
	},
}

func (rt *runtime) mustCatalog(ctx context.Context) *catalog.Catalog {
	cat, err := rt.waitReady(ctx, false)
	if err != nil {
		rt.fatal("waiting for the server", err)
	}
	return cat
}

func init() {
	rootCmd.AddCommand(healthCmd, questionsCmd, rolesCmd)
}
