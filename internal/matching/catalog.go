// Package matching scores career fit test answers against a fixed catalog of career profiles.
//
// The catalog (question bank, career profiles and insight descriptions) is compiled into the
// binary and loaded once. Every operation on an Engine is a pure function of the catalog and
// its arguments, so an Engine can be shared by any number of goroutines without locking.
package matching

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"careermate/internal/domain"
)

//go:embed data/questions.yaml
var questionsYAML []byte

//go:embed data/careers.yaml
var careersYAML []byte

//go:embed data/insights.yaml
var insightsYAML []byte

// Catalog is the read-only registry of questions, careers and insight texts.
type Catalog struct {
	version      int
	categories   []domain.Category
	questions    map[domain.Category][]domain.Question
	byID         map[string]domain.Question
	careers      []domain.CareerProfile
	careerIndex  map[string]int
	descriptions map[string]map[domain.InsightLevel]string
	labelSpace   []dimensionLabel
}

type dimensionLabel struct {
	dimension domain.Dimension
	label     string
}

type questionsDoc struct {
	Version    int `yaml:"version"`
	Categories []struct {
		Name      string `yaml:"name"`
		Questions []struct {
			ID    string `yaml:"id"`
			Text  string `yaml:"text"`
			Label string `yaml:"label"`
		} `yaml:"questions"`
	} `yaml:"categories"`
}

type careersDoc struct {
	Careers []struct {
		ID             string            `yaml:"id"`
		Title          string            `yaml:"title"`
		Category       string            `yaml:"category"`
		Traits         orderedWeights    `yaml:"traits"`
		Skills         orderedWeights    `yaml:"skills"`
		Values         orderedWeights    `yaml:"values"`
		EducationPaths []string          `yaml:"education_paths"`
		SkillGaps      map[string]string `yaml:"skill_gaps"`
	} `yaml:"careers"`
}

type insightsDoc struct {
	Descriptions map[string]map[string]string `yaml:"descriptions"`
}

// orderedWeights keeps the key order of a YAML mapping; strengths and gaps are
// reported in that order when their scores tie.
type orderedWeights []domain.LabelWeight

func (w *orderedWeights) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: weights must be a mapping", node.Line)
	}
	out := make(orderedWeights, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var lw domain.LabelWeight
		if err := node.Content[i].Decode(&lw.Label); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&lw.Weight); err != nil {
			return fmt.Errorf("line %d: weight for %q: %w", node.Content[i+1].Line, lw.Label, err)
		}
		if _, dup := seen[lw.Label]; dup {
			return fmt.Errorf("line %d: duplicate label %q", node.Content[i].Line, lw.Label)
		}
		if lw.Weight < 0 || lw.Weight > 1 {
			return fmt.Errorf("line %d: weight for %q out of range: %v", node.Content[i+1].Line, lw.Label, lw.Weight)
		}
		seen[lw.Label] = struct{}{}
		out = append(out, lw)
	}
	*w = out
	return nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the embedded catalog. It panics if the embedded data is invalid,
// which can only happen with a broken build.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		c, err := NewCatalog(questionsYAML, careersYAML, insightsYAML)
		if err != nil {
			panic(fmt.Sprintf("matching: embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// NewCatalog parses and validates catalog documents.
func NewCatalog(questions, careers, insights []byte) (*Catalog, error) {
	var qd questionsDoc
	if err := yaml.Unmarshal(questions, &qd); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	var cd careersDoc
	if err := yaml.Unmarshal(careers, &cd); err != nil {
		return nil, fmt.Errorf("parse careers: %w", err)
	}
	var id insightsDoc
	if err := yaml.Unmarshal(insights, &id); err != nil {
		return nil, fmt.Errorf("parse insights: %w", err)
	}

	c := &Catalog{
		version:      qd.Version,
		questions:    make(map[domain.Category][]domain.Question, len(qd.Categories)),
		byID:         make(map[string]domain.Question),
		careerIndex:  make(map[string]int, len(cd.Careers)),
		descriptions: make(map[string]map[domain.InsightLevel]string, len(id.Descriptions)),
	}

	seenLabels := make(map[dimensionLabel]struct{})
	for _, cat := range qd.Categories {
		category := domain.Category(cat.Name)
		dim, ok := category.Dimension()
		if !ok {
			return nil, fmt.Errorf("unknown category %q", cat.Name)
		}
		if _, dup := c.questions[category]; dup {
			return nil, fmt.Errorf("duplicate category %q", cat.Name)
		}
		list := make([]domain.Question, 0, len(cat.Questions))
		for _, q := range cat.Questions {
			if q.ID == "" || q.Label == "" {
				return nil, fmt.Errorf("category %s: question without id or label", cat.Name)
			}
			if _, dup := c.byID[q.ID]; dup {
				return nil, fmt.Errorf("duplicate question id %q", q.ID)
			}
			question := domain.Question{ID: q.ID, Text: q.Text, Label: q.Label, Category: category}
			c.byID[q.ID] = question
			list = append(list, question)

			key := dimensionLabel{dimension: dim, label: q.Label}
			if _, seen := seenLabels[key]; !seen && dim != domain.DimensionInterests {
				seenLabels[key] = struct{}{}
				c.labelSpace = append(c.labelSpace, key)
			}
		}
		c.categories = append(c.categories, category)
		c.questions[category] = list
	}
	if len(c.categories) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}

	for i, p := range cd.Careers {
		if p.ID == "" {
			return nil, fmt.Errorf("career #%d has no id", i)
		}
		if _, dup := c.careerIndex[p.ID]; dup {
			return nil, fmt.Errorf("duplicate career id %q", p.ID)
		}
		c.careerIndex[p.ID] = len(c.careers)
		c.careers = append(c.careers, domain.CareerProfile{
			ID:             p.ID,
			Title:          p.Title,
			Category:       p.Category,
			Traits:         []domain.LabelWeight(p.Traits),
			Skills:         []domain.LabelWeight(p.Skills),
			Values:         []domain.LabelWeight(p.Values),
			EducationPaths: p.EducationPaths,
			SkillGaps:      p.SkillGaps,
		})
	}

	for label, levels := range id.Descriptions {
		byLevel := make(map[domain.InsightLevel]string, 3)
		for _, lvl := range []domain.InsightLevel{domain.LevelLow, domain.LevelMedium, domain.LevelHigh} {
			text, ok := levels[string(lvl)]
			if !ok || text == "" {
				return nil, fmt.Errorf("insight %q: missing %s description", label, lvl)
			}
			byLevel[lvl] = text
		}
		c.descriptions[label] = byLevel
	}

	return c, nil
}

func (c *Catalog) Version() int { return c.version }

// Categories returns the categories in catalog order.
func (c *Catalog) Categories() []domain.Category {
	return append([]domain.Category(nil), c.categories...)
}

func (c *Catalog) Question(id string) (domain.Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Careers returns a copy of the career profiles in definition order.
func (c *Catalog) Careers() []domain.CareerProfile {
	out := make([]domain.CareerProfile, len(c.careers))
	for i, p := range c.careers {
		out[i] = cloneProfile(p)
	}
	return out
}

func (c *Catalog) Career(id string) (domain.CareerProfile, bool) {
	i, ok := c.careerIndex[id]
	if !ok {
		return domain.CareerProfile{}, false
	}
	return cloneProfile(c.careers[i]), true
}

func (c *Catalog) description(label string, level domain.InsightLevel) (string, bool) {
	levels, ok := c.descriptions[label]
	if !ok {
		return "", false
	}
	text, ok := levels[level]
	return text, ok
}

func cloneProfile(p domain.CareerProfile) domain.CareerProfile {
	p.Traits = append([]domain.LabelWeight(nil), p.Traits...)
	p.Skills = append([]domain.LabelWeight(nil), p.Skills...)
	p.Values = append([]domain.LabelWeight(nil), p.Values...)
	p.EducationPaths = append([]string(nil), p.EducationPaths...)
	gaps := make(map[string]string, len(p.SkillGaps))
	for k, v := range p.SkillGaps {
		gaps[k] = v
	}
	p.SkillGaps = gaps
	return p
}
