package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"careermate/internal/domain"
)

const sampleAnswers = `answers:
  - question_id: p1
    score: 5
  - question_id: p2
    score: 1
  - question_id: i1
    score: 5
  - question_id: s1
    score: 5
  - question_id: s5
    score: 5
  - question_id: v7
    score: 5
`

func writeAnswersFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write answers: %v", err)
	}
	return path
}

func TestLoadAnswers(t *testing.T) {
	answers, err := loadAnswers(writeAnswersFile(t, sampleAnswers))
	if err != nil {
		t.Fatalf("load answers: %v", err)
	}
	if len(answers) != 6 || answers[0] != (domain.Answer{QuestionID: "p1", Score: 5}) {
		t.Fatalf("unexpected answers: %+v", answers)
	}

	if _, err := loadAnswers(writeAnswersFile(t, "answers: []\n")); err == nil {
		t.Fatalf("expected error for empty answers")
	}
	if _, err := loadAnswers(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestScoreCommand_JSON(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"score", "--answers", writeAnswersFile(t, sampleAnswers), "--tier", "premium", "--format", "json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var got assessmentOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if got.Tier != domain.TierPremium || len(got.Results) != 8 || got.Results[0].CareerID != "cybersecurity-analyst" {
		t.Fatalf("unexpected output: %+v", got)
	}
}

func TestScoreCommand_TextFree(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"score", "--answers", writeAnswersFile(t, sampleAnswers), "--tier", "free", "--format", "text"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Career matches (free)") || !strings.Contains(text, "1. Cybersecurity Analyst: 82%") {
		t.Fatalf("unexpected text output:\n%s", text)
	}
	if strings.Contains(text, "traits ") {
		t.Fatalf("free output must not show sub-scores:\n%s", text)
	}
}

func TestScoreCommand_Rejections(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	for _, tier := range []string{"gold", "PREMIUM", "premium ", "Free"} {
		rootCmd.SetArgs([]string{"score", "--answers", writeAnswersFile(t, sampleAnswers), "--tier", tier})
		if err := rootCmd.Execute(); !errors.Is(err, domain.ErrInvalidTier) {
			t.Fatalf("tier %q: expected ErrInvalidTier, got %v", tier, err)
		}
	}

	bad := "answers:\n  - question_id: nope\n    score: 3\n"
	rootCmd.SetArgs([]string{"score", "--answers", writeAnswersFile(t, bad), "--tier", "free"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error for unknown question")
	}

	rootCmd.SetArgs([]string{"score", "--answers", writeAnswersFile(t, sampleAnswers), "--format", "xml"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
