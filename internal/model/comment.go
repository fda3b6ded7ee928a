package model

import "time"

type Comment struct {
	ID         string    `gorm:"primaryKey;size:32" json:"id"`
	VideoID    string    `gorm:"not null;index:idx_comments_video_created,priority:1" json:"videoId"`
	AuthorID   string    `gorm:"not null" json:"uid"`
	AuthorName *string   `json:"authorName,omitempty"`
	Text       string    `gorm:"not null" json:"text"`
	CreatedAt  time.Time `gorm:"not null;index:idx_comments_video_created,priority:2" json:"createdAt"`
}
