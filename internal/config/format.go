package config

import "strings"

// Format names the syntax a config file is written in.
type Format string

const (
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
)

// DetectFormat picks JSONC when the first token after leading whitespace and
// `//` or `/* */` comments is `{`. Anything else is YAML.
func DetectFormat(content string) Format {
	rest := content
	for {
		rest = strings.TrimLeft(rest, " \t\r\n\uFEFF")
		switch {
		case strings.HasPrefix(rest, "//"):
			end := strings.IndexAny(rest, "\r\n")
			if end < 0 {
				return FormatJSONC
			}
			rest = rest[end:]
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				return FormatJSONC
			}
			rest = rest[end+4:]
		case strings.HasPrefix(rest, "{"):
			return FormatJSONC
		default:
			return FormatYAML
		}
	}
}
