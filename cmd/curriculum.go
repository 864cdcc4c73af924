package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var curriculumCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "List the chapters and lessons of the curriculum",
	RunE: func(cmd *cobra.Command, args []string) error {
		chapter, _ := cmd.Flags().GetInt("chapter")

		cur, err := loadCurriculum(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Curriculum %s (pass mark %d%%)\n\n", cur.Version, cur.PassMark)
		var lessons int
		for _, ch := range cur.Chapters {
			if chapter != 0 && ch.Number != chapter {
				continue
			}
			fmt.Printf("Chapter %d: %s\n", ch.Number, ch.Title)
			fmt.Println(strings.Repeat("─", 72))
			for _, l := range ch.Lessons {
				tag := ""
				if l.Review {
					tag = "review"
				}
				fmt.Printf("  %3d  %-50s  %3d q  %s\n", l.Number, truncate(l.Title, 50), l.QuestionCount, tag)
				lessons++
			}
			fmt.Println()
		}
		if lessons == 0 {
			return fmt.Errorf("chapter %d is not in the curriculum", chapter)
		}
		fmt.Printf("%d lessons\n", lessons)
		return nil
	},
}

func init() {
	curriculumCmd.Flags().Int("chapter", 0, "Only list this chapter")
}
