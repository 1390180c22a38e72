package matching

import (
	"fmt"
	"math"
	"sort"

	"careermate/internal/domain"
)

// Fixed policy weights of each dimension in the overall match.
const (
	traitWeight = 0.4
	skillWeight = 0.4
	valueWeight = 0.2
)

// Thresholds for strengths and gaps. A label only qualifies when the career weighs it at
// least importantWeight.
const (
	importantWeight   = 0.7
	strengthThreshold = 0.7
	gapThreshold      = 0.6
	maxHighlights     = 3
)

const (
	genericSkillRemediation = "Develop this skill through relevant courses and practice"
	genericAreaRemediation  = "Focus on developing this area"
)

// ScoreAll ranks every career in the catalog against the user's vectors, best match
// first. Ties keep catalog order.
func (e *Engine) ScoreAll(vectors domain.AggregatedVectors) ([]domain.MatchResult, error) {
	if err := validateVectors(vectors); err != nil {
		return nil, err
	}

	results := make([]domain.MatchResult, 0, len(e.catalog.careers))
	for _, career := range e.catalog.careers {
		results = append(results, scoreCareer(career, vectors))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchPercentage > results[j].MatchPercentage
	})
	return results, nil
}

func scoreCareer(career domain.CareerProfile, vectors domain.AggregatedVectors) domain.MatchResult {
	traitScore := dimensionScore(career.Traits, vectors.Traits)
	skillScore := dimensionScore(career.Skills, vectors.Skills)
	valueScore := dimensionScore(career.Values, vectors.Values)
	overall := traitWeight*traitScore + skillWeight*skillScore + valueWeight*valueScore

	strengths, gaps := highlights(career, vectors)
	return domain.MatchResult{
		CareerID:        career.ID,
		Title:           career.Title,
		Category:        career.Category,
		MatchPercentage: percent(overall),
		TraitScore:      percent(traitScore),
		SkillScore:      percent(skillScore),
		ValueScore:      percent(valueScore),
		Strengths:       strengths,
		Gaps:            gaps,
		EducationPaths:  append([]string(nil), career.EducationPaths...),
	}
}

// dimensionScore is the importance-weighted closeness between career weights and user
// scores over the labels both sides carry. Zero when they share none.
func dimensionScore(weights []domain.LabelWeight, user domain.LabelVector) float64 {
	var weighted, total float64
	for _, w := range weights {
		u, ok := user[w.Label]
		if !ok {
			continue
		}
		weighted += (1 - math.Abs(w.Weight-u)) * w.Weight
		total += w.Weight
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

func highlights(career domain.CareerProfile, vectors domain.AggregatedVectors) ([]domain.Strength, []domain.Gap) {
	strengths := []domain.Strength{}
	gaps := []domain.Gap{}
	for _, dim := range domain.ScoredDimensions {
		user := vectors.For(dim)
		for _, w := range career.Weights(dim) {
			u, ok := user[w.Label]
			if !ok || w.Weight < importantWeight {
				continue
			}
			if u >= strengthThreshold {
				strengths = append(strengths, domain.Strength{Type: dim, Label: w.Label, UserScore: u})
			}
			if u < gapThreshold {
				gaps = append(gaps, domain.Gap{
					Type:            dim,
					Label:           w.Label,
					UserScore:       u,
					TargetScore:     w.Weight,
					RemediationText: remediation(career, dim, w.Label),
				})
			}
		}
	}

	sort.SliceStable(strengths, func(i, j int) bool {
		return strengths[i].UserScore > strengths[j].UserScore
	})
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].TargetScore-gaps[i].UserScore > gaps[j].TargetScore-gaps[j].UserScore
	})
	if len(strengths) > maxHighlights {
		strengths = strengths[:maxHighlights]
	}
	if len(gaps) > maxHighlights {
		gaps = gaps[:maxHighlights]
	}
	return strengths, gaps
}

func remediation(career domain.CareerProfile, dim domain.Dimension, label string) string {
	if dim != domain.DimensionSkills {
		return genericAreaRemediation
	}
	if text, ok := career.SkillGaps[label]; ok {
		return text
	}
	return genericSkillRemediation
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}

func validateVectors(v domain.AggregatedVectors) error {
	for _, dim := range []domain.Dimension{domain.DimensionTraits, domain.DimensionInterests, domain.DimensionSkills, domain.DimensionValues} {
		for label, score := range v.For(dim) {
			if math.IsNaN(score) || score < 0 || score > 1 {
				return fmt.Errorf("%w: %s.%s = %v", ErrInvalidVector, dim, label, score)
			}
		}
	}
	return nil
}
