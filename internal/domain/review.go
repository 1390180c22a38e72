package domain

import (
	"errors"
	"time"
)

const (
	MinReviewRating = 1
	MaxReviewRating = 5
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Review es la opinion de un usuario sobre una carrera del catalogo.
type Review struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username,omitempty"`
	CareerID      string    `json:"career_id"`
	Rating        int       `json:"rating"`
	Text          string    `json:"text"`
	Pros          string    `json:"pros,omitempty"`
	Cons          string    `json:"cons,omitempty"`
	CurrentStatus string    `json:"current_status"`
	Likes         int       `json:"likes"`
	LikedByViewer bool      `json:"liked_by_viewer"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LikeState es el resultado de alternar un like.
type LikeState struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

func ValidRating(r int) bool {
	return r >= MinReviewRating && r <= MaxReviewRating
}
