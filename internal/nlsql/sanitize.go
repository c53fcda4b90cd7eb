package nlsql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsafeQuery means no acceptable statement could be extracted from the
// model's output. Callers must refuse the request, never execute the text.
var ErrUnsafeQuery = errors.New("nlsql: no safe statement could be extracted")

var (
	fenceMarker       = regexp.MustCompile("(?i)```(?:sql)?")
	readOnlyStatement = regexp.MustCompile(`(?is)\bSELECT\b.*?(?:;|$)`)
	writeStatement    = regexp.MustCompile(`(?is)\b(?:SELECT|INSERT|UPDATE|DELETE)\b.*?(?:;|$)`)
)

// Sanitize extracts exactly one statement from raw model output. It strips
// markdown fences anywhere in the text, locates the first allowed verb,
// and keeps everything up to the first terminator; surrounding prose is
// discarded. Multi-statement output is truncated to the first statement.
// The default profile accepts SELECT only; allowWrites additionally
// permits INSERT, UPDATE, and DELETE.
func Sanitize(raw string, allowWrites bool) (string, error) {
	cleaned := fenceMarker.ReplaceAllString(raw, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty output", ErrUnsafeQuery)
	}

	pattern := readOnlyStatement
	if allowWrites {
		pattern = writeStatement
	}
	match := pattern.FindString(cleaned)
	if match == "" {
		return "", fmt.Errorf("%w: no allowed statement verb in output", ErrUnsafeQuery)
	}

	statement := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(match), ";"))
	if !startsWithAllowedVerb(statement, allowWrites) {
		return "", fmt.Errorf("%w: extracted text does not begin with an allowed verb", ErrUnsafeQuery)
	}
	return statement, nil
}

func startsWithAllowedVerb(statement string, allowWrites bool) bool {
	fields := strings.Fields(statement)
	if len(fields) == 0 {
		return false
	}
	verb := strings.ToUpper(fields[0])
	if verb == "SELECT" {
		return true
	}
	if !allowWrites {
		return false
	}
	switch verb {
	case "INSERT", "UPDATE", "DELETE":
		return true
	default:
		return false
	}
}
