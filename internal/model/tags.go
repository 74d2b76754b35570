package model

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeTagsInput lower-cases and trims the input, turns commas into spaces
// and collapses runs of whitespace.
func NormalizeTagsInput(value string) string {
	v := strings.TrimSpace(strings.ToLower(value))
	v = strings.ReplaceAll(v, ",", " ")
	return whitespace.ReplaceAllString(v, " ")
}

// ParseTags splits a tag string into distinct, non-blank, lower-case tokens
func ParseTags(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	v := strings.ReplaceAll(strings.ToLower(value), ",", " ")
	return Distinct(strings.Fields(v))
}

// JoinTags is the storage form of a tag list
func JoinTags(tags []string) string {
	return strings.Join(tags, " ")
}

// Distinct removes duplicates and blanks, keeping first occurrence order
func Distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
