package utils

import (
	"regexp"
	"strings"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
	slugScrubber   = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenSqueezer = regexp.MustCompile(`-{2,}`)
)

// IsValidSlug reports whether s is a well-formed organization slug:
// non-empty, lowercase letters, digits and hyphens only.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Slugify derives a base slug from an organization name. Used when the caller
// doesn't supply a desired slug; the result still goes through the allocator
// for uniqueness.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugScrubber.ReplaceAllString(s, "")
	s = hyphenSqueezer.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
