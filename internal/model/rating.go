package model

import "time"

const (
	RatingLike    = 1
	RatingDislike = -1
	RatingClear   = 0
)

// Rating is keyed by (VideoID, AuthorID). A value of 0 is never stored,
// writing it removes the row instead.
type Rating struct {
	VideoID   string    `gorm:"primaryKey;size:64" json:"videoId"`
	AuthorID  string    `gorm:"primaryKey;size:128" json:"uid"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingSummary is always aggregated from the current ratings, there are no
// stored counters
type RatingSummary struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}
