package domain

import "time"

const FeatureCareerTest = "career_test"

type Subscription struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	FeatureID   string     `json:"feature_id"`
	Active      bool       `json:"active"`
	StartedAt   time.Time  `json:"started_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// Limits granted by each tier.
const (
	FreeQuestionsLimit    = 20
	PremiumQuestionsLimit = 60
	FreeMatchesLimit      = 2
	PremiumMatchesLimit   = 10
	FreeInsightsLimit     = 3
)

// Features are the limits and capabilities granted by a tier.
// A zero PersonalityInsightsLimit means unlimited.
type Features struct {
	TestQuestionsLimit       int  `json:"test_questions_limit"`
	CareerMatchesLimit       int  `json:"career_matches_limit"`
	PersonalityInsightsLimit int  `json:"personality_insights_limit"`
	SkillGapAnalysis         bool `json:"skill_gap_analysis"`
	ProgressTracking         bool `json:"progress_tracking"`
	DownloadableReport       bool `json:"downloadable_report"`
}

// CareerTestFeatures returns what the career test grants to a tier. Anything other
// than premium gets the free set.
func CareerTestFeatures(t Tier) Features {
	if t == TierPremium {
		return Features{
			TestQuestionsLimit: PremiumQuestionsLimit,
			CareerMatchesLimit: PremiumMatchesLimit,
			SkillGapAnalysis:   true,
			ProgressTracking:   true,
			DownloadableReport: true,
		}
	}
	return Features{
		TestQuestionsLimit:       FreeQuestionsLimit,
		CareerMatchesLimit:       FreeMatchesLimit,
		PersonalityInsightsLimit: FreeInsightsLimit,
	}
}
