package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"careermate/internal/domain"
	"careermate/internal/matching"
)

type assessmentOutput struct {
	Tier     domain.Tier          `json:"plan_type"`
	Results  []domain.MatchResult `json:"results"`
	Insights []domain.Insight     `json:"personality_insights"`
}

func writeAssessment(w io.Writer, format string, tier domain.Tier, a matching.Assessment) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(assessmentOutput{Tier: tier, Results: a.Results, Insights: a.Insights})
	case "text", "":
		return writeText(w, tier, a)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeText(w io.Writer, tier domain.Tier, a matching.Assessment) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Career matches (%s)\n", tier)
	for i, r := range a.Results {
		fmt.Fprintf(&b, "%d. %s: %d%%\n", i+1, r.DisplayTitle(), r.MatchPercentage)
		if tier == domain.TierPremium {
			fmt.Fprintf(&b, "   traits %d%%  skills %d%%  values %d%%\n", r.TraitScore, r.SkillScore, r.ValueScore)
		}
		for _, s := range r.Strengths {
			fmt.Fprintf(&b, "   + %s (%s)\n", s.Label, s.Type)
		}
		for _, g := range r.Gaps {
			fmt.Fprintf(&b, "   - %s: %s\n", g.Label, g.RemediationText)
		}
	}
	if len(a.Insights) > 0 {
		b.WriteString("\nPersonality insights\n")
		for _, in := range a.Insights {
			fmt.Fprintf(&b, "  %s: %d (%s)\n", in.Label, in.Score, in.Level)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
