package matching

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"careermate/internal/domain"
)

// Free results keep one strength, one gap and one education path each.
const freeDetailLimit = 1

// Shape trims ranked results for a tier. It never re-ranks and never changes scores.
// The input is not modified.
func Shape(ranked []domain.MatchResult, tier domain.Tier) ([]domain.MatchResult, error) {
	limit := domain.CareerTestFeatures(tier).CareerMatchesLimit
	switch tier {
	case domain.TierPremium:
		return cloneResults(head(ranked, limit)), nil
	case domain.TierFree:
		out := cloneResults(head(ranked, limit))
		title := cases.Title(language.English)
		for i := range out {
			out[i].CategoryTitle = title.String(out[i].Category)
			out[i].Strengths = head(out[i].Strengths, freeDetailLimit)
			out[i].Gaps = head(out[i].Gaps, freeDetailLimit)
			out[i].EducationPaths = head(out[i].EducationPaths, freeDetailLimit)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func cloneResults(in []domain.MatchResult) []domain.MatchResult {
	out := make([]domain.MatchResult, len(in))
	for i, r := range in {
		r.Strengths = append([]domain.Strength{}, r.Strengths...)
		r.Gaps = append([]domain.Gap{}, r.Gaps...)
		r.EducationPaths = append([]string{}, r.EducationPaths...)
		out[i] = r
	}
	return out
}
