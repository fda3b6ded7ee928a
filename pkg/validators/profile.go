package validators

import (
	"errors"
	"strings"
	"time"

	"videoshare/video-api/internal/model"
)

var (
	ErrUIDEmpty    = errors.New("no uid provided")
	ErrDOBInvalid  = errors.New("date of birth must be formatted as YYYY-MM-DD")
	ErrRoleInvalid = errors.New("invalid role provided")
	ErrNameTooLong = errors.New("name is too long")
)

const maxProfileNameLen = 100

// ProfileInput is the body of a profile upsert
type ProfileInput struct {
	UID   string  `json:"uid"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	DOB   *string `json:"dob"`
	Role  string  `json:"role"`
}

// ProfileValidator normalizes p in place and returns the first problem found
func ProfileValidator(p *ProfileInput) error {
	p.UID = strings.TrimSpace(p.UID)
	if p.UID == "" {
		return ErrUIDEmpty
	}

	p.Email = strings.TrimSpace(p.Email)
	if err := EmailValidator(p.Email); err != nil {
		return err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if len(name) > maxProfileNameLen {
			return ErrNameTooLong
		}
		p.Name = &name
	}

	if p.DOB != nil {
		dob := strings.TrimSpace(*p.DOB)
		if dob == "" {
			p.DOB = nil
		} else {
			t, err := time.Parse(time.DateOnly, dob)
			if err != nil || t.After(time.Now()) {
				return ErrDOBInvalid
			}
			p.DOB = &dob
		}
	}

	p.Role = strings.TrimSpace(p.Role)
	if p.Role != "" && !model.ValidRole(p.Role) {
		return ErrRoleInvalid
	}

	return nil
}
