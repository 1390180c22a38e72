package domain

import "time"

const (
	ActivityCareerTest   = "career_test"
	ActivitySubscription = "subscription"
	ActivityReview       = "career_review"
)

type Activity struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ActivityType string    `json:"activity_type"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}
