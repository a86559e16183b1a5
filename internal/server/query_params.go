package server

import (
	"errors"
	"strconv"
	"strings"
)

var errInvalidPageSize = errors.New("invalid_page_size")

func parseOptionalInt32(value string) (int32, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 32)
	if err != nil || parsed < 0 {
		return 0, errInvalidPageSize
	}
	return int32(parsed), nil
}
