package matching

import (
	"fmt"

	"careermate/internal/domain"
)

// TotalFreeQuota is the number of questions the free tier may see, split evenly
// across categories with floor division. Remainders are dropped.
const TotalFreeQuota = domain.FreeQuestionsLimit

// FreeQuotaPerCategory returns floor(TotalFreeQuota / number of categories).
func (c *Catalog) FreeQuotaPerCategory() int {
	if len(c.categories) == 0 {
		return 0
	}
	return TotalFreeQuota / len(c.categories)
}

// Questions returns the questions a tier may answer. Premium gets the whole bank;
// free gets the first FreeQuotaPerCategory questions of each category.
func (e *Engine) Questions(tier domain.Tier) (domain.QuestionSet, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
	limit := -1
	if tier == domain.TierFree {
		limit = e.catalog.FreeQuotaPerCategory()
	}

	set := make(domain.QuestionSet, len(e.catalog.categories))
	for _, cat := range e.catalog.categories {
		all := e.catalog.questions[cat]
		n := len(all)
		if limit >= 0 && limit < n {
			n = limit
		}
		set[cat] = append([]domain.Question(nil), all[:n]...)
	}
	return set, nil
}
