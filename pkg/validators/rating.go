package validators

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"videoshare/video-api/internal/model"
)

var ErrRatingInvalid = errors.New("invalid rating")

// RatingValidator accepts 1, -1 or 0 given either as a JSON number or a
// numeric string
func RatingValidator(raw any) (int, error) {
	var v int

	switch t := raw.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, ErrRatingInvalid
		}
		v = int(t)
	case json.Number:
		n, err := strconv.Atoi(t.String())
		if err != nil {
			return 0, ErrRatingInvalid
		}
		v = n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, ErrRatingInvalid
		}
		v = n
	default:
		return 0, ErrRatingInvalid
	}

	switch v {
	case model.RatingLike, model.RatingDislike, model.RatingClear:
		return v, nil
	default:
		return 0, ErrRatingInvalid
	}
}
