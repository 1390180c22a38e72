package matching

import (
	"fmt"

	"careermate/internal/domain"
)

const (
	minAnswerScore = 1
	maxAnswerScore = 5
)

// Normalize maps a 1-5 answer onto [0,1].
func Normalize(score int) float64 {
	return float64(score-minAnswerScore) / float64(maxAnswerScore-minAnswerScore)
}

// Aggregate averages normalized answers per (dimension, label). Questions are looked up
// in the full bank regardless of the tier that served them. A repeated question id keeps
// its last answer. Labels nobody answered are absent from the result, not zero.
func (e *Engine) Aggregate(answers []domain.Answer) (domain.AggregatedVectors, error) {
	latest := make(map[string]int, len(answers))
	order := make([]string, 0, len(answers))
	for _, a := range answers {
		if _, ok := e.catalog.byID[a.QuestionID]; !ok {
			return domain.AggregatedVectors{}, fmt.Errorf("%w: %q", ErrUnknownQuestion, a.QuestionID)
		}
		if a.Score < minAnswerScore || a.Score > maxAnswerScore {
			return domain.AggregatedVectors{}, fmt.Errorf("%w: question %s scored %d", ErrInvalidScore, a.QuestionID, a.Score)
		}
		if _, seen := latest[a.QuestionID]; !seen {
			order = append(order, a.QuestionID)
		}
		latest[a.QuestionID] = a.Score
	}

	type acc struct {
		sum   float64
		count int
	}
	sums := map[domain.Dimension]map[string]*acc{}
	for _, id := range order {
		q := e.catalog.byID[id]
		dim, _ := q.Category.Dimension()
		byLabel, ok := sums[dim]
		if !ok {
			byLabel = map[string]*acc{}
			sums[dim] = byLabel
		}
		a, ok := byLabel[q.Label]
		if !ok {
			a = &acc{}
			byLabel[q.Label] = a
		}
		a.sum += Normalize(latest[id])
		a.count++
	}

	mean := func(d domain.Dimension) domain.LabelVector {
		v := domain.LabelVector{}
		for label, a := range sums[d] {
			v[label] = a.sum / float64(a.count)
		}
		return v
	}
	return domain.AggregatedVectors{
		Traits:    mean(domain.DimensionTraits),
		Interests: mean(domain.DimensionInterests),
		Skills:    mean(domain.DimensionSkills),
		Values:    mean(domain.DimensionValues),
	}, nil
}
