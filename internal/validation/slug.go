package validation

import (
	"fmt"
	"regexp"
)

var slugRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const maxSlugLength = 100

// ValidateSlug checks the format of a short link slug.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(slug) > maxSlugLength {
		return fmt.Errorf("slug must not exceed %d characters", maxSlugLength)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}
