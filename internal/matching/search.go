package matching

import (
	"strings"

	"golang.org/x/text/cases"

	"careermate/internal/domain"
)

// SearchCareers filtra el catalogo por categoria exacta y por texto en el titulo o el id.
// La comparacion ignora mayusculas con case folding de Unicode. Filtros vacios no filtran.
func (c *Catalog) SearchCareers(category, query string) []domain.CareerProfile {
	fold := cases.Fold()
	category = fold.String(strings.TrimSpace(category))
	query = fold.String(strings.TrimSpace(query))

	out := make([]domain.CareerProfile, 0, len(c.careers))
	for _, p := range c.careers {
		if category != "" && fold.String(p.Category) != category {
			continue
		}
		if query != "" && !strings.Contains(fold.String(p.Title), query) && !strings.Contains(p.ID, query) {
			continue
		}
		out = append(out, cloneProfile(p))
	}
	return out
}

func (e *Engine) SearchCareers(category, query string) []domain.CareerProfile {
	return e.catalog.SearchCareers(category, query)
}
