package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/magicmentor/mentor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mentor",
	Short: "AI career mentor for data professionals",
	Long:  "Mentor — terminal career mentor that assesses your data skills, remembers every session, and plans what to learn next.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data", "", "Data directory (overrides MENTOR_DATA_DIR env var)")
	rootCmd.PersistentFlags().String("user", "", "User identity (overrides MENTOR_USER env var, default \"default\")")

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDataDir returns the data directory using --data (highest
// priority), then MENTOR_DATA_DIR, then the default XDG path.
func resolveDataDir(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("data"); p != "" {
		return p, os.MkdirAll(p, 0o755)
	}
	return store.DefaultDataDir()
}

// resolveUser returns the active user identity.
func resolveUser(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	if u := os.Getenv("MENTOR_USER"); u != "" {
		return u
	}
	return "default"
}

// requestLogPath is where the LLM request audit trail lives.
func requestLogPath(dataDir string) string {
	return filepath.Join(dataDir, "llm_requests.jsonl")
}
