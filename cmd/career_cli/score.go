package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"careermate/internal/domain"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a YAML file of answers",
	Long:  "Reads answers from a YAML file (a list of question_id/score pairs under `answers`) and prints the ranked career matches.",
	RunE:  runScore,
}

var (
	scoreAnswersFile string
	scoreTier        string
	scoreFormat      string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreAnswersFile, "answers", "a", "", "Path to the answers YAML file (required)")
	scoreCmd.Flags().StringVarP(&scoreTier, "tier", "t", "free", "Access tier: free or premium")
	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", "text", "Output format: text or json")

	if err := scoreCmd.MarkFlagRequired("answers"); err != nil {
		panic(fmt.Sprintf("failed to mark answers flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

type answersFile struct {
	Answers []domain.Answer `yaml:"answers"`
}

func loadAnswers(path string) ([]domain.Answer, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers file %s: %w", path, err)
	}
	var doc answersFile
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse answers file %s: %w", path, err)
	}
	if len(doc.Answers) == 0 {
		return nil, fmt.Errorf("answers file %s has no answers", path)
	}
	return doc.Answers, nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	tier, err := domain.ParseTier(scoreTier)
	if err != nil {
		return err
	}
	answers, err := loadAnswers(scoreAnswersFile)
	if err != nil {
		return err
	}

	assessment, err := engine.Assess(answers, tier)
	if err != nil {
		return fmt.Errorf("score answers: %w", err)
	}
	logger.Info("answers scored",
		zap.String("tier", tier.String()),
		zap.Int("answers", len(answers)),
		zap.Int("results", len(assessment.Results)),
	)
	return writeAssessment(cmd.OutOrStdout(), scoreFormat, tier, assessment)
}
