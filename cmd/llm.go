package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magicmentor/mentor/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM request log",
}

var llmLogCmd = &cobra.Command{
	Use:   "log",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		dataDir, err := resolveDataDir(cmd)
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}

		entries, err := readRequestLog(requestLogPath(dataDir))
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No LLM requests logged yet.")
			return nil
		}

		if purpose != "" {
			filtered := entries[:0]
			for _, e := range entries {
				if e.Purpose == purpose {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[len(entries)-limit:]
		}

		fmt.Printf("%-19s  %-20s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 100))

		for _, e := range entries {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			model := e.Model
			if len(model) > 28 {
				model = model[:28]
			}
			fmt.Printf("%-19s  %-20s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				model,
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured providers",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := llm.ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			if discovered, ok := llm.DiscoverConfig(); ok {
				cfg = discovered
				fmt.Println("Provider discovered from API key environment variables.")
			} else {
				fmt.Printf("No usable provider: %v\n", err)
				return
			}
		}

		fmt.Printf("Chat provider:  %s\n", cfg.Provider)
		switch cfg.Provider {
		case "local":
			fmt.Printf("  Endpoint:     %s\n", cfg.Local.BaseURL)
			fmt.Printf("  Model:        %s\n", cfg.Local.Model)
		case "perplexity":
			fmt.Printf("  Model:        %s\n", cfg.Perplexity.Model)
		case "openai":
			fmt.Printf("  Model:        %s\n", cfg.OpenAI.Model)
		case "anthropic":
			fmt.Printf("  Model:        %s\n", cfg.Anthropic.Model)
		case "gemini":
			fmt.Printf("  Model:        %s\n", cfg.Gemini.Model)
		}

		if cfg.Perplexity.APIKey != "" {
			fmt.Printf("Search:         perplexity (%s)\n", cfg.Perplexity.Model)
		} else {
			fmt.Println("Search:         not configured (set MENTOR_PERPLEXITY_API_KEY)")
		}
	},
}

func init() {
	llmLogCmd.Flags().Int("limit", 20, "Maximum entries to show")
	llmLogCmd.Flags().String("purpose", "", "Filter by request purpose")

	llmCmd.AddCommand(llmStatusCmd)
	llmCmd.AddCommand(llmLogCmd)
}

// readRequestLog parses the JSONL request log, skipping lines that don't
// parse — the log is append-only and a torn final line is possible.
func readRequestLog(path string) ([]llm.RequestLogEntry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open request log: %w", err)
	}
	defer f.Close()

	var entries []llm.RequestLogEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var e llm.RequestLogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read request log: %w", err)
	}
	return entries, nil
}
