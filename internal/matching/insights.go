package matching

import (
	"fmt"
	"sort"

	"careermate/internal/domain"
)

// Insights describes the personality traits measured by the answers. Only personality
// questions contribute. Labels without a canned description are skipped.
func (e *Engine) Insights(answers []domain.Answer, tier domain.Tier) ([]domain.Insight, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
	vectors, err := e.Aggregate(answers)
	if err != nil {
		return nil, err
	}
	return e.insights(vectors, tier), nil
}

func (e *Engine) insights(vectors domain.AggregatedVectors, tier domain.Tier) []domain.Insight {
	insights := []domain.Insight{}
	for _, label := range e.personalityLabels() {
		score, ok := vectors.Traits[label]
		if !ok {
			continue
		}
		level := LevelFor(score)
		text, ok := e.catalog.description(label, level)
		if !ok {
			continue
		}
		insights = append(insights, domain.Insight{
			Label:       label,
			Score:       percent(score),
			Level:       level,
			Description: text,
		})
	}
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Score > insights[j].Score
	})

	if limit := domain.CareerTestFeatures(tier).PersonalityInsightsLimit; limit > 0 {
		insights = head(insights, limit)
	}
	return insights
}

// LevelFor buckets a normalized score: >=0.7 high, >=0.4 medium, else low.
func LevelFor(score float64) domain.InsightLevel {
	switch {
	case score >= 0.7:
		return domain.LevelHigh
	case score >= 0.4:
		return domain.LevelMedium
	default:
		return domain.LevelLow
	}
}

// personalityLabels returns each personality label once, in question order.
func (e *Engine) personalityLabels() []string {
	var labels []string
	seen := map[string]struct{}{}
	for _, q := range e.catalog.questions[domain.CategoryPersonality] {
		if _, ok := seen[q.Label]; ok {
			continue
		}
		seen[q.Label] = struct{}{}
		labels = append(labels, q.Label)
	}
	return labels
}
