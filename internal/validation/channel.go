// Package validation holds input checks shared by handlers and loaders.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleRunes    = 255
	maxUsernameRunes = 255
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{3,31}$`)

// NormalizeUsername trims whitespace, a leading '@' and a t.me prefix.
func NormalizeUsername(raw string) string {
	s := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://t.me/", "http://t.me/", "t.me/", "@"} {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.TrimSuffix(s, "/")
}

// ValidateChannelTitle requires 1 to 255 characters after trimming.
func ValidateChannelTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n == 0 {
		return fmt.Errorf("title is required")
	}
	if n > maxTitleRunes {
		return fmt.Errorf("title must be at most %d characters", maxTitleRunes)
	}
	return nil
}

// ValidateChannelUsername checks a normalized public handle. Empty is allowed.
func ValidateChannelUsername(username string) error {
	if username == "" {
		return nil
	}
	if utf8.RuneCountInString(username) > maxUsernameRunes {
		return fmt.Errorf("username must be at most %d characters", maxUsernameRunes)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must start with a letter and contain 4-32 letters, digits or underscores")
	}
	return nil
}

// ValidateChannelID rejects the zero id. Marked ids are normalized elsewhere.
func ValidateChannelID(id int64) error {
	if id == 0 {
		return fmt.Errorf("channel_id is required")
	}
	return nil
}

// ValidateColorFlag accepts any non-negative category number.
func ValidateColorFlag(flag int) error {
	if flag < 0 {
		return fmt.Errorf("color_flag must not be negative")
	}
	return nil
}
