package matching

import (
	"fmt"

	"careermate/internal/domain"
)

// Engine runs the career fit test against a catalog.
type Engine struct {
	catalog *Catalog
}

func NewEngine(catalog *Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{catalog: catalog}
}

func (e *Engine) Catalog() *Catalog { return e.catalog }

// Careers lists the career profiles in catalog order.
func (e *Engine) Careers() []domain.CareerProfile { return e.catalog.Careers() }

func (e *Engine) Career(id string) (domain.CareerProfile, bool) { return e.catalog.Career(id) }

// RunTest aggregates answers, scores every career and shapes the ranking for the tier.
func (e *Engine) RunTest(answers []domain.Answer, tier domain.Tier) ([]domain.MatchResult, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
	vectors, err := e.Aggregate(answers)
	if err != nil {
		return nil, err
	}
	return e.rank(vectors, tier)
}

func (e *Engine) rank(vectors domain.AggregatedVectors, tier domain.Tier) ([]domain.MatchResult, error) {
	ranked, err := e.ScoreAll(vectors)
	if err != nil {
		return nil, err
	}
	return Shape(ranked, tier)
}

// Assessment bundles everything one submission produces.
type Assessment struct {
	Vectors       domain.AggregatedVectors
	Results       []domain.MatchResult
	Insights      []domain.Insight
	ProfileVector []float32
}

// Assess is RunTest and Insights in one call, plus the profile vector used for progress
// tracking. The answers are aggregated once.
func (e *Engine) Assess(answers []domain.Answer, tier domain.Tier) (Assessment, error) {
	if !tier.Valid() {
		return Assessment{}, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
	vectors, err := e.Aggregate(answers)
	if err != nil {
		return Assessment{}, err
	}
	results, err := e.rank(vectors, tier)
	if err != nil {
		return Assessment{}, err
	}
	return Assessment{
		Vectors:       vectors,
		Results:       results,
		Insights:      e.insights(vectors, tier),
		ProfileVector: e.ProfileVector(vectors),
	}, nil
}
