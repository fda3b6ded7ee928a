// Package model defines the records persisted by the metadata store
package model

import "time"

const (
	DefaultTitle        = "Untitled"
	DefaultUploaderName = "Unnamed"
	DefaultGenre        = "Uncategorized"
)

type Video struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	Title        string    `gorm:"not null;index" json:"title"`
	UploaderName string    `json:"uploaderName"`
	Genre        string    `gorm:"index" json:"genre"`
	CreatorID    string    `gorm:"not null;index" json:"creatorId"`
	URL          string    `gorm:"not null" json:"url"`
	CreatedAt    time.Time `gorm:"not null;index" json:"createdAt"`
}

// VideoSort is the ordering used when listing videos
type VideoSort string

const (
	SortLatest  VideoSort = "latest"
	SortPopular VideoSort = "popular"
)

type VideoFilter struct {
	Search    string
	CreatorID string
	Sort      VideoSort
	Skip      int
	Limit     int
}
