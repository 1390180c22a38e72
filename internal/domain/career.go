package domain

import (
	"errors"
	"fmt"
)

// Tier is the access level of a user for the career fit test.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

var ErrInvalidTier = errors.New("invalid tier")

// ParseTier accepts exactly "free" or "premium". Case and surrounding spaces are not
// normalised and there is no default.
func ParseTier(raw string) (Tier, error) {
	t := Tier(raw)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, raw)
	}
	return t, nil
}

func (t Tier) Valid() bool {
	return t == TierFree || t == TierPremium
}

func (t Tier) String() string { return string(t) }

// Category groups assessment questions.
type Category string

const (
	CategoryPersonality Category = "personality"
	CategoryInterests   Category = "interests"
	CategorySkills      Category = "skills"
	CategoryValues      Category = "values"
)

// Categories lists every category in catalog order.
var Categories = []Category{CategoryPersonality, CategoryInterests, CategorySkills, CategoryValues}

// Dimension is the label space a category is measured in.
type Dimension string

const (
	DimensionTraits    Dimension = "traits"
	DimensionInterests Dimension = "interests"
	DimensionSkills    Dimension = "skills"
	DimensionValues    Dimension = "values"
)

// ScoredDimensions are the dimensions compared against career profiles.
// Interests are collected but never scored.
var ScoredDimensions = []Dimension{DimensionTraits, DimensionSkills, DimensionValues}

func (c Category) Dimension() (Dimension, bool) {
	switch c {
	case CategoryPersonality:
		return DimensionTraits, true
	case CategoryInterests:
		return DimensionInterests, true
	case CategorySkills:
		return DimensionSkills, true
	case CategoryValues:
		return DimensionValues, true
	}
	return "", false
}

type Question struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

// QuestionSet maps each category to its questions in catalog order.
type QuestionSet map[Category][]Question

// Count returns the number of questions across all categories.
func (s QuestionSet) Count() int {
	n := 0
	for _, qs := range s {
		n += len(qs)
	}
	return n
}

// Answer is a raw 1-5 response to a single question.
type Answer struct {
	QuestionID string `json:"question_id" yaml:"question_id"`
	Score      int    `json:"score" yaml:"score"`
}

// LabelVector maps a label to a normalized score in [0,1].
type LabelVector map[string]float64

// AggregatedVectors holds the per-dimension vectors built from one submission.
type AggregatedVectors struct {
	Traits    LabelVector `json:"traits"`
	Interests LabelVector `json:"interests"`
	Skills    LabelVector `json:"skills"`
	Values    LabelVector `json:"values"`
}

func (v AggregatedVectors) For(d Dimension) LabelVector {
	switch d {
	case DimensionTraits:
		return v.Traits
	case DimensionInterests:
		return v.Interests
	case DimensionSkills:
		return v.Skills
	case DimensionValues:
		return v.Values
	}
	return nil
}

// LabelWeight is one entry of a career's partial weight vector.
type LabelWeight struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

type CareerProfile struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Category       string            `json:"category"`
	Traits         []LabelWeight     `json:"traits"`
	Skills         []LabelWeight     `json:"skills"`
	Values         []LabelWeight     `json:"values"`
	EducationPaths []string          `json:"education_paths"`
	SkillGaps      map[string]string `json:"skill_gaps"`
}

func (p CareerProfile) Weights(d Dimension) []LabelWeight {
	switch d {
	case DimensionTraits:
		return p.Traits
	case DimensionSkills:
		return p.Skills
	case DimensionValues:
		return p.Values
	}
	return nil
}

type Strength struct {
	Type      Dimension `json:"type"`
	Label     string    `json:"label"`
	UserScore float64   `json:"user_score"`
}

type Gap struct {
	Type            Dimension `json:"type"`
	Label           string    `json:"label"`
	UserScore       float64   `json:"user_score"`
	TargetScore     float64   `json:"target_score"`
	RemediationText string    `json:"remediation_text"`
}

type MatchResult struct {
	CareerID        string     `json:"career_id"`
	Title           string     `json:"title"`
	Category        string     `json:"category"`
	CategoryTitle   string     `json:"category_title,omitempty"`
	MatchPercentage int        `json:"match_percentage"`
	TraitScore      int        `json:"trait_score"`
	SkillScore      int        `json:"skill_score"`
	ValueScore      int        `json:"value_score"`
	Strengths       []Strength `json:"strengths"`
	Gaps            []Gap      `json:"gaps"`
	EducationPaths  []string   `json:"education_paths"`
}

// DisplayTitle prefers the career title and falls back to the category title.
func (m MatchResult) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	if m.CategoryTitle != "" {
		return m.CategoryTitle
	}
	return "Unknown"
}

// InsightLevel buckets a personality score.
type InsightLevel string

const (
	LevelLow    InsightLevel = "low"
	LevelMedium InsightLevel = "medium"
	LevelHigh   InsightLevel = "high"
)

type Insight struct {
	Label       string       `json:"label"`
	Score       int          `json:"score"`
	Level       InsightLevel `json:"level"`
	Description string       `json:"description"`
}
