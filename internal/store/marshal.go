package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/rxharness/internal/matcher"
)

// marshalResult converts a MatchResult to JSON TEXT for storage.
// Group text is stored byte-for-byte, so the canonical encoder (which
// normalizes strings) is not used here.
func marshalResult(res matcher.MatchResult) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalResult parses JSON TEXT to a MatchResult.
func unmarshalResult(data string) (matcher.MatchResult, error) {
	var res matcher.MatchResult
	if data == "" || data == "{}" {
		return res, nil
	}
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return matcher.MatchResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return res, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
