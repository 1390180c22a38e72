package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// TestResult is one persisted career fit test submission.
type TestResult struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Answers       []Answer        `json:"answers"`
	Results       []MatchResult   `json:"results"`
	Insights      []Insight       `json:"personality_insights"`
	Tier          Tier            `json:"plan_type"`
	ProfileVector pgvector.Vector `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TopMatch is the condensed view of a match shown in history.
type TopMatch struct {
	Title           string `json:"title"`
	MatchPercentage int    `json:"match_percentage"`
}

type TestHistoryEntry struct {
	ID         string     `json:"id"`
	Tier       Tier       `json:"plan_type"`
	TopMatches []TopMatch `json:"top_matches"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CareerDelta is the change of one career's match between two submissions.
type CareerDelta struct {
	CareerID string `json:"career_id"`
	Title    string `json:"title"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
	Delta    int    `json:"delta"`
}

// Progress compares the two most recent submissions of a user.
type Progress struct {
	CurrentResultID  string        `json:"current_result_id"`
	PreviousResultID string        `json:"previous_result_id"`
	ProfileShift     float64       `json:"profile_shift"`
	Careers          []CareerDelta `json:"careers"`
}
