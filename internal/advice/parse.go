// Package advice builds advice prompts, fetches generated advice, and splits it into sections.
package advice

import (
	"regexp"
	"strings"
)

// Section keys in the order they are rendered.
const (
	KeySummary    = "summary"
	KeyLifestyle  = "lifestyle"
	KeyHealthcare = "healthcare"
	KeyPrevention = "prevention"
)

// FallbackText stands in when the advice service returns no text.
const FallbackText = "No detailed advice could be generated at this time."

// Keys lists the fixed section keys.
var Keys = []string{KeySummary, KeyLifestyle, KeyHealthcare, KeyPrevention}

// sectionPatterns capture from a key's marker up to the next '[' or end of text.
var sectionPatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(Keys))
	for _, key := range Keys {
		out[key] = regexp.MustCompile(regexp.QuoteMeta(Marker(key)) + `([^\[]*)`)
	}
	return out
}()

var bulletPrefix = regexp.MustCompile(`^[•\-*]\s*`)

// Sections is the four-part advice extracted from one generated text.
type Sections struct {
	Summary    string
	Lifestyle  string
	Healthcare string
	Prevention string
}

// Marker returns the bracketed uppercase token for key.
func Marker(key string) string {
	return "[" + strings.ToUpper(key) + "]"
}

// Parse extracts each section independently; absent markers yield empty strings.
func Parse(text string) Sections {
	return Sections{
		Summary:    section(text, KeySummary),
		Lifestyle:  section(text, KeyLifestyle),
		Healthcare: section(text, KeyHealthcare),
		Prevention: section(text, KeyPrevention),
	}
}

func section(text string, key string) string {
	match := sectionPatterns[key].FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// Get returns the section for key, or "" for unknown keys.
func (s Sections) Get(key string) string {
	switch key {
	case KeySummary:
		return s.Summary
	case KeyLifestyle:
		return s.Lifestyle
	case KeyHealthcare:
		return s.Healthcare
	case KeyPrevention:
		return s.Prevention
	default:
		return ""
	}
}

// Empty reports whether no section carried any text.
func (s Sections) Empty() bool {
	return s.Summary == "" && s.Lifestyle == "" && s.Healthcare == "" && s.Prevention == ""
}

// Bullets splits a section into trimmed lines with one leading bullet glyph removed.
func Bullets(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, bulletPrefix.ReplaceAllString(line, ""))
	}
	return out
}
