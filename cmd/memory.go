package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magicmentor/mentor/internal/episodic"
	"github.com/magicmentor/mentor/internal/store"
	"github.com/magicmentor/mentor/internal/ui/theme"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect persistent memory",
}

var memoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what is stored for the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		mem, err := openUserMemory(cmd)
		if err != nil {
			return err
		}

		sk := mem.Skills()
		fmt.Println(theme.Title.Render("Memory — " + mem.UserID()))
		fmt.Printf("  Assessments:       %d\n", len(mem.AssessmentHistory()))
		fmt.Printf("  Recorded gaps:     %d\n", len(mem.AssessmentGaps()))
		fmt.Printf("  Mentor notes:      %d\n", len(mem.MentorNotes()))
		fmt.Printf("  Session summaries: %d\n", len(mem.SessionSummaries()))
		fmt.Printf("  Skills tracked:    %d current, %d learning, %d completed\n",
			len(sk.Current), len(sk.Learning), len(sk.Completed))

		dataDir, err := resolveDataDir(cmd)
		if err != nil {
			return err
		}
		if epStore, err := store.Open(store.EpisodicDBPath(dataDir, mem.UserID())); err == nil {
			defer epStore.Close()
			episodes := episodic.New(epStore, nil)
			if n, err := episodes.Count(context.Background()); err == nil {
				fmt.Printf("  Episodes:          %d\n", n)
			}
		}

		fmt.Println()
		fmt.Println(theme.Hint.Render("Files: " + mem.Dir()))
		return nil
	},
}

var memoryRecallCmd = &cobra.Command{
	Use:   "recall <query>",
	Short: "Search episodic memory by similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")

		dataDir, err := resolveDataDir(cmd)
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
		userID := resolveUser(cmd)

		epStore, err := store.Open(store.EpisodicDBPath(dataDir, userID))
		if err != nil {
			return fmt.Errorf("open episodic store: %w", err)
		}
		defer epStore.Close()

		episodes := episodic.New(epStore, episodic.EmbedderFromEnv())
		if !episodes.Available() {
			fmt.Fprintln(os.Stderr, "No embedder configured — set MENTOR_EMBED_BASE_URL or OPENAI_API_KEY.")
			return nil
		}

		results, err := episodes.Retrieve(context.Background(), query, limit)
		if err != nil {
			return fmt.Errorf("recall: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("Nothing relevant remembered yet.")
			return nil
		}

		for _, r := range results {
			fmt.Printf("%s  %s %s\n  %s\n",
				theme.Hint.Render(r.CreatedAt.Local().Format("2006-01-02")),
				theme.Subtitle.Render(r.Kind),
				theme.Hint.Render(fmt.Sprintf("(%.2f)", r.Score)),
				r.Content)
		}
		return nil
	},
}

func init() {
	memoryRecallCmd.Flags().Int("limit", 5, "Maximum results")

	memoryCmd.AddCommand(memoryStatsCmd)
	memoryCmd.AddCommand(memoryRecallCmd)
}
