package validators

import (
	"errors"
	"strconv"
	"strings"

	"videoshare/video-api/internal/model"
)

var (
	ErrLimitInvalid = errors.New("limit must be a positive number")
	ErrSkipInvalid  = errors.New("skip must be a non-negative number")
)

const (
	DefaultVideoLimit   = 20
	MaxVideoLimit       = 100
	DefaultCommentLimit = 100
	MaxCommentLimit     = 500
)

// LimitValidator parses a limit query value. Empty means def, anything
// above max is clamped.
func LimitValidator(raw string, def, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, ErrLimitInvalid
	}

	return min(n, max), nil
}

func SkipValidator(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrSkipInvalid
	}

	return n, nil
}

// VideoFilterValidator builds a listing filter from query values. Unknown
// sort modes fall back to latest.
func VideoFilterValidator(search, sort, creator, limit, skip string) (model.VideoFilter, error) {
	f := model.VideoFilter{
		Search:    strings.TrimSpace(search),
		CreatorID: strings.TrimSpace(creator),
		Sort:      model.SortLatest,
	}

	if model.VideoSort(sort) == model.SortPopular {
		f.Sort = model.SortPopular
	}

	var err error

	f.Limit, err = LimitValidator(limit, DefaultVideoLimit, MaxVideoLimit)
	if err != nil {
		return f, err
	}

	f.Skip, err = SkipValidator(skip)
	if err != nil {
		return f, err
	}

	return f, nil
}
