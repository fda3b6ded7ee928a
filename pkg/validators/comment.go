package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrCommentEmpty   = errors.New("empty comment")
	ErrCommentTooLong = errors.New("comment is too long")
)

const maxCommentLength = 2000

// CommentValidator trims the comment text and rejects blank or oversized
// comments
func CommentValidator(text string) (string, error) {
	text = strings.TrimSpace(text)

	if text == "" {
		return "", ErrCommentEmpty
	}

	if utf8.RuneCountInString(text) > maxCommentLength {
		return "", ErrCommentTooLong
	}

	return text, nil
}
