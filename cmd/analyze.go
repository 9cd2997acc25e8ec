package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magicmentor/mentor/internal/analysis"
	"github.com/magicmentor/mentor/internal/llm"
	"github.com/magicmentor/mentor/internal/ui/theme"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build a learning roadmap from your assessments",
	Long: `Turn your assessment history into career guidance: a prioritized
learning roadmap and realistic next roles. With a Perplexity API key
configured, the advice is grounded in live job-market research.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		mem, err := openUserMemory(cmd)
		if err != nil {
			return err
		}
		if len(mem.AssessmentHistory()) == 0 {
			return fmt.Errorf("no assessments yet — run `mentor assess` first")
		}

		dataDir, err := resolveDataDir(cmd)
		if err != nil {
			return err
		}
		reqLog := llm.NewFileRequestLog(requestLogPath(dataDir))

		provider, err := llm.NewProviderFromEnv(ctx, reqLog)
		if err != nil {
			return fmt.Errorf("configure LLM provider: %w", err)
		}

		var search llm.Provider
		cfg := llm.ConfigFromEnv()
		if cfg.Perplexity.APIKey != "" {
			search, err = llm.NewSearchProvider(cfg, reqLog)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: search provider unavailable: %v\n", err)
			}
		}

		fmt.Println(theme.Hint.Render("Analyzing your assessment history..."))
		a := analysis.New(provider, search, analysis.DefaultConfig())
		result, err := a.Analyze(ctx, mem)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(theme.Title.Render("Learning roadmap"))
		for i, step := range result.LearningRoadmap {
			fmt.Printf("  %s %s\n", theme.Prompt.Render(fmt.Sprintf("%d.", i+1)), step)
		}

		if len(result.RecommendedRoles) > 0 {
			fmt.Println()
			fmt.Println(theme.Title.Render("Roles within reach"))
			for _, role := range result.RecommendedRoles {
				fmt.Printf("  • %s\n", role)
			}
		}

		if len(result.SkillGaps) > 0 {
			fmt.Println()
			fmt.Println(theme.Hint.Render(fmt.Sprintf("Based on %d assessed gaps — see `mentor profile`.", len(result.SkillGaps))))
		}
		return nil
	},
}
