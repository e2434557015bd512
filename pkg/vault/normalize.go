package vault

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	titleHostileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	titleWhitespace   = regexp.MustCompile(`\s+`)
)

const maxTitleRunes = 60

// SanitizeTitle strips filesystem-hostile characters, collapses whitespace
// and caps the title length. Empty results fall back to fallback.
func SanitizeTitle(title, fallback string) string {
	title = titleHostileChars.ReplaceAllString(title, "")
	title = titleWhitespace.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)

	if r := []rune(title); len(r) > maxTitleRunes {
		title = string(r[:maxTitleRunes])
	}
	if title == "" {
		return fallback
	}
	return title
}

// ParseTags accepts either a JSON array (`["a","b"]`) or a comma-separated
// string ("a, b") and returns the cleaned tag list. Malformed JSON degrades
// to a single raw tag, matching the lenient behavior clients rely on.
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			return []string{raw}
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	var tags []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
