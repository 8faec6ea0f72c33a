package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// decodeJSONC strips comments and trailing commas, then strictly decodes the payload.
func decodeJSONC(content string) (fileConfig, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return fileConfig{}, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload fileConfig
	if err := decoder.Decode(&payload); err != nil {
		return fileConfig{}, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return fileConfig{}, wrapJSONDecodeError(normalized, err)
	}
	return payload, nil
}

// normalizeJSONC blanks comments and trailing commas with spaces so byte
// offsets in decode errors still point into the original file.
func normalizeJSONC(content string) (string, error) {
	sc := jsoncScanner{src: content, out: make([]byte, 0, len(content))}
	for sc.pos < len(sc.src) {
		if err := sc.step(); err != nil {
			return "", err
		}
	}
	return string(sc.out), nil
}

type jsoncScanner struct {
	src string
	out []byte
	pos int
}

func (s *jsoncScanner) step() error {
	ch := s.src[s.pos]
	switch {
	case ch == '"':
		s.copyString()
	case strings.HasPrefix(s.src[s.pos:], "//"):
		s.blankUntil(strings.IndexAny(s.src[s.pos:], "\r\n"))
	case strings.HasPrefix(s.src[s.pos:], "/*"):
		end := strings.Index(s.src[s.pos+2:], "*/")
		if end < 0 {
			return fmt.Errorf("unterminated block comment in JSONC")
		}
		s.blankUntil(end + 4)
	case ch == '}' || ch == ']':
		s.dropTrailingComma()
		s.out = append(s.out, ch)
		s.pos++
	default:
		s.out = append(s.out, ch)
		s.pos++
	}
	return nil
}

// copyString emits a string literal verbatim, honoring backslash escapes.
func (s *jsoncScanner) copyString() {
	s.out = append(s.out, '"')
	s.pos++
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		s.out = append(s.out, ch)
		s.pos++
		switch ch {
		case '\\':
			if s.pos < len(s.src) {
				s.out = append(s.out, s.src[s.pos])
				s.pos++
			}
		case '"':
			return
		}
	}
}

// blankUntil replaces the next n bytes with spaces, keeping line breaks.
// A negative n blanks the rest of the input.
func (s *jsoncScanner) blankUntil(n int) {
	if n < 0 {
		n = len(s.src) - s.pos
	}
	for _, ch := range []byte(s.src[s.pos : s.pos+n]) {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			s.out = append(s.out, ch)
			continue
		}
		s.out = append(s.out, ' ')
	}
	s.pos += n
}

// dropTrailingComma blanks a comma that directly precedes a closing bracket.
func (s *jsoncScanner) dropTrailingComma() {
	for i := len(s.out) - 1; i >= 0; i-- {
		switch s.out[i] {
		case ' ', '\n', '\r', '\t':
			continue
		case ',':
			s.out[i] = ' '
		}
		return
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
