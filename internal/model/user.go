package model

import "time"

const (
	RoleConsumer = "consumer"
	RoleCreator  = "creator"
)

type User struct {
	UID       string    `gorm:"primaryKey;size:128" json:"uid"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	DOB       *string   `gorm:"column:dob" json:"dob,omitempty"` // YYYY-MM-DD
	Role      string    `gorm:"not null;default:consumer" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ValidRole(r string) bool {
	return r == RoleConsumer || r == RoleCreator
}
