package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/magicmentor/mentor/internal/assessment"
	"github.com/magicmentor/mentor/internal/consolidate"
	"github.com/magicmentor/mentor/internal/episodic"
	"github.com/magicmentor/mentor/internal/llm"
	"github.com/magicmentor/mentor/internal/marker"
	"github.com/magicmentor/mentor/internal/memory"
	"github.com/magicmentor/mentor/internal/store"
	"github.com/magicmentor/mentor/internal/ui/theme"
)

var assessCmd = &cobra.Command{
	Use:   "assess [topic]",
	Short: "Run an adaptive skill assessment",
	Long: `Run an adaptive diagnostic interview on one skill area.
The mentor asks questions one at a time, adapting difficulty to your
answers, then scores each subtopic and records the gaps worth working on.

During the interview:
  /skip   admit you don't know the current question
  /quit   abandon the assessment without saving`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		dataDir, err := resolveDataDir(cmd)
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
		userID := resolveUser(cmd)

		mem, err := memory.Open(dataDir, userID)
		if err != nil {
			return fmt.Errorf("open memory: %w", err)
		}

		reqLog := llm.NewFileRequestLog(requestLogPath(dataDir))
		provider, err := llm.NewProviderFromEnv(ctx, reqLog)
		if err != nil {
			return fmt.Errorf("configure LLM provider: %w", err)
		}

		topic, err := pickTopic(args)
		if err != nil {
			return err
		}

		return runAssessment(ctx, mem, provider, topic, dataDir, userID)
	},
}

// pickTopic resolves the topic from the CLI argument or an interactive menu.
func pickTopic(args []string) (assessment.Topic, error) {
	if len(args) == 1 {
		if t, ok := assessment.TopicByLabel(args[0]); ok {
			return t, nil
		}
		return assessment.Topic{}, fmt.Errorf("unknown topic %q (run without arguments to see the list)", args[0])
	}

	fmt.Println(theme.Title.Render("What should we assess?"))
	for i, t := range assessment.DefaultTopics {
		fmt.Printf("  %s %s %s\n",
			theme.Prompt.Render(fmt.Sprintf("%d.", i+1)),
			theme.Body.Render(t.Label),
			theme.Hint.Render("("+strings.Join(t.Subtopics, ", ")+")"))
	}
	fmt.Print(theme.Prompt.Render("> "))

	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return assessment.Topic{}, fmt.Errorf("no topic selected")
	}
	choice := strings.TrimSpace(sc.Text())

	if n, err := strconv.Atoi(choice); err == nil {
		if n < 1 || n > len(assessment.DefaultTopics) {
			return assessment.Topic{}, fmt.Errorf("choice %d out of range", n)
		}
		return assessment.DefaultTopics[n-1], nil
	}
	if t, ok := assessment.TopicByLabel(choice); ok {
		return t, nil
	}
	return assessment.Topic{}, fmt.Errorf("unknown topic %q", choice)
}

func runAssessment(ctx context.Context, mem *memory.Store, provider llm.Provider, topic assessment.Topic, dataDir, userID string) error {
	sessionID := uuid.NewString()

	// Episodic recall is optional: without an embedder the index stays
	// empty and the assessment runs exactly the same.
	var episodes *episodic.Memory
	if epStore, err := store.Open(store.EpisodicDBPath(dataDir, userID)); err == nil {
		defer epStore.Close()
		episodes = episodic.New(epStore, episodic.EmbedderFromEnv())
	} else {
		fmt.Fprintf(os.Stderr, "warning: episodic memory unavailable: %v\n", err)
	}

	memCtx := mem.BuildContextPrompt()
	if episodes != nil {
		if past, err := episodes.BuildContext(ctx, topic.Label+" assessment", 3); err == nil && past != "" {
			memCtx += "\n\n" + past
		}
	}

	orch := assessment.New(provider, assessment.DefaultConfig())

	turn, err := orch.Start(ctx, topic, memCtx)
	if err != nil {
		return fmt.Errorf("start assessment: %w", err)
	}

	fmt.Println()
	fmt.Println(theme.Title.Render("Assessment: " + topic.Label))
	fmt.Println(theme.Hint.Render("/skip if you don't know, /quit to abandon"))
	fmt.Println()
	fmt.Println(theme.Mentor.Render(marker.StripMarkers(turn.Message)))

	// The orchestrator is stateless; accumulate scoring here.
	subtopics := map[string]int{}
	var overall int
	var gaps []string

	sc := bufio.NewScanner(os.Stdin)
	for !turn.Complete {
		fmt.Println()
		fmt.Print(theme.Prompt.Render("you> "))
		if !sc.Scan() {
			fmt.Println(theme.Hint.Render("\nInput closed — assessment discarded."))
			return sc.Err()
		}
		answer := strings.TrimSpace(sc.Text())

		lowConfidence := false
		switch answer {
		case "":
			continue
		case "/quit":
			fmt.Println(theme.Hint.Render("Assessment abandoned — nothing saved."))
			return nil
		case "/skip":
			answer = "I don't know this yet."
			lowConfidence = true
		}

		turn, err = orch.Continue(ctx, answer, lowConfidence, turn.Transcript, topic)
		if err != nil {
			return fmt.Errorf("assessment turn: %w", err)
		}

		if turn.QuestionScore != nil {
			fmt.Println(theme.Hint.Render(fmt.Sprintf("  [scored %d/100]", *turn.QuestionScore)))
		}
		for k, v := range turn.SubtopicScores {
			subtopics[k] = v
		}
		if turn.OverallScore != nil {
			overall = *turn.OverallScore
		}
		if len(turn.Gaps) > 0 {
			gaps = turn.Gaps
		}

		if visible := marker.StripMarkers(turn.Message); visible != "" {
			fmt.Println()
			fmt.Println(theme.Mentor.Render(visible))
		}
	}

	entries := assessment.BuildGapEntries(topic.Label, subtopics, gaps, overall)
	printResults(topic, overall, subtopics, entries)

	// Save exactly once, after the interview is over.
	if err := mem.SaveAssessment(topic.Label, overall, subtopics, entries); err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}

	if episodes != nil {
		result := fmt.Sprintf("Assessed %s: %d/100 overall, %d gaps", topic.Label, overall, len(entries))
		if err := episodes.Add(ctx, sessionID, episodic.KindAssessmentResult, result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: record episode: %v\n", err)
		}
	}

	fmt.Println(theme.Hint.Render("Updating memory..."))
	cons := consolidate.New(provider, episodes, consolidate.DefaultConfig())
	if err := cons.Run(ctx, mem, turn.Transcript, "assessment"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	return nil
}

func printResults(topic assessment.Topic, overall int, subtopics map[string]int, entries []assessment.GapEntry) {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Results: "+topic.Label) + "\n\n")
	b.WriteString("Overall: " + theme.Score(overall).Render(fmt.Sprintf("%d/100", overall)) + "\n")

	if len(subtopics) > 0 {
		b.WriteString("\n")
		names := make([]string, 0, len(subtopics))
		for name := range subtopics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			score := subtopics[name]
			b.WriteString(fmt.Sprintf("  %-28s %s\n", name, theme.Score(score).Render(fmt.Sprintf("%3d/100", score))))
		}
	}

	if len(entries) > 0 {
		b.WriteString("\n" + theme.Gap.Render("Gaps to work on:") + "\n")
		for _, e := range entries {
			b.WriteString(fmt.Sprintf("  %d. %s — %s\n", e.Priority, e.Skill, e.Reason))
		}
	} else {
		b.WriteString("\n" + theme.ScoreGood.Render("No significant gaps — nice work.") + "\n")
	}

	fmt.Println()
	fmt.Println(theme.Card.Render(strings.TrimRight(b.String(), "\n")))
}
