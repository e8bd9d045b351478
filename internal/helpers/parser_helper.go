package helpers

import (
	"strconv"

	"github.com/google/uuid"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParseUUIDParam parses an optional uuid query value. Empty and "all" both
// mean "no filter" and come back as uuid.Nil without error.
func ParseUUIDParam(s string) (uuid.UUID, error) {
	if s == "" || s == "all" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}
