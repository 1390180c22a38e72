package main

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"careermate/internal/domain"
)

var scaleItems = []string{
	"1 - Strongly disagree",
	"2 - Disagree",
	"3 - Neutral",
	"4 - Agree",
	"5 - Strongly agree",
}

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take the career fit test interactively",
	RunE:  runTake,
}

var takeTier string

func init() {
	takeCmd.Flags().StringVarP(&takeTier, "tier", "t", "free", "Access tier: free or premium")
	rootCmd.AddCommand(takeCmd)
}

func runTake(cmd *cobra.Command, _ []string) error {
	tier, err := domain.ParseTier(takeTier)
	if err != nil {
		return err
	}
	set, err := engine.Questions(tier)
	if err != nil {
		return err
	}

	answers := make([]domain.Answer, 0, set.Count())
	for _, category := range engine.Catalog().Categories() {
		questions := set[category]
		for i, q := range questions {
			prompt := promptui.Select{
				Label: fmt.Sprintf("[%s %d/%d] %s", category, i+1, len(questions), q.Text),
				Items: scaleItems,
			}
			idx, _, err := prompt.Run()
			if err != nil {
				return err
			}
			answers = append(answers, domain.Answer{QuestionID: q.ID, Score: idx + 1})
		}
	}

	assessment, err := engine.Assess(answers, tier)
	if err != nil {
		return fmt.Errorf("score answers: %w", err)
	}
	logger.Info("test completed", zap.String("tier", tier.String()), zap.Int("answers", len(answers)))
	return writeText(cmd.OutOrStdout(), tier, assessment)
}
