package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magicmentor/mentor/internal/memory"
	"github.com/magicmentor/mentor/internal/ui/theme"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show what the mentor knows about you",
	RunE: func(cmd *cobra.Command, args []string) error {
		mem, err := openUserMemory(cmd)
		if err != nil {
			return err
		}

		p := mem.Profile()
		fmt.Println(theme.Title.Render("Profile"))
		printField("Name", p.Name)
		printField("Current role", p.CurrentRole)
		printField("Target role", p.TargetRole)
		printField("Location", p.Location)
		if p.YearsExperience > 0 {
			printField("Experience", fmt.Sprintf("%d years", p.YearsExperience))
		}

		sk := mem.Skills()
		if len(sk.Current) > 0 || len(sk.Learning) > 0 || len(sk.Completed) > 0 {
			fmt.Println()
			fmt.Println(theme.Title.Render("Skills"))
			printField("Current", joinSkills(sk.Current))
			printField("Learning", joinSkills(sk.Learning))
			if len(sk.Completed) > 0 {
				parts := make([]string, 0, len(sk.Completed))
				for _, c := range sk.Completed {
					parts = append(parts, fmt.Sprintf("%s (%.0f%%)", c.Name, c.Score))
				}
				printField("Completed", strings.Join(parts, ", "))
			}
		}

		prefs := mem.Preferences()
		if len(prefs.CareerGoals) > 0 || len(prefs.Concerns) > 0 {
			fmt.Println()
			fmt.Println(theme.Title.Render("Preferences"))
			printField("Career goals", strings.Join(prefs.CareerGoals, "; "))
			printField("Concerns", strings.Join(prefs.Concerns, "; "))
			printField("Learning style", prefs.LearningStyle)
		}

		if hist := mem.AssessmentHistory(); len(hist) > 0 {
			fmt.Println()
			fmt.Println(theme.Title.Render("Assessments"))
			for _, a := range hist {
				fmt.Printf("  %s  %-28s %s  %s\n",
					theme.Hint.Render(a.AssessedAt.Local().Format("2006-01-02")),
					a.Skill,
					theme.Score(a.OverallScore).Render(fmt.Sprintf("%3d/100", a.OverallScore)),
					theme.Hint.Render(fmt.Sprintf("%d gaps", len(a.GapEntries))))
			}
		}

		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set profile facts directly",
	RunE: func(cmd *cobra.Command, args []string) error {
		mem, err := openUserMemory(cmd)
		if err != nil {
			return err
		}

		var p memory.Profile
		p.Name, _ = cmd.Flags().GetString("name")
		p.CurrentRole, _ = cmd.Flags().GetString("role")
		p.TargetRole, _ = cmd.Flags().GetString("target")
		p.Location, _ = cmd.Flags().GetString("location")
		p.YearsExperience, _ = cmd.Flags().GetInt("years")

		if p == (memory.Profile{}) {
			return fmt.Errorf("nothing to set (see --help for flags)")
		}
		if err := mem.UpdateProfile(p); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		fmt.Println("Profile updated.")
		return nil
	},
}

func init() {
	profileSetCmd.Flags().String("name", "", "Your name")
	profileSetCmd.Flags().String("role", "", "Current role")
	profileSetCmd.Flags().String("target", "", "Target role")
	profileSetCmd.Flags().String("location", "", "Location")
	profileSetCmd.Flags().Int("years", 0, "Years of experience")

	profileCmd.AddCommand(profileSetCmd)
}

// openUserMemory resolves the data dir and user, then opens the Tier-1 store.
func openUserMemory(cmd *cobra.Command) (*memory.Store, error) {
	dataDir, err := resolveDataDir(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	mem, err := memory.Open(dataDir, resolveUser(cmd))
	if err != nil {
		return nil, fmt.Errorf("open memory: %w", err)
	}
	return mem, nil
}

func printField(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("  %-15s %s\n", theme.Subtitle.Render(label+":"), value)
}

func joinSkills(skills []memory.Skill) string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}
