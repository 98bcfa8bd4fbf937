package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxharness/internal/matcher"
)

func TestMatchCommand_Text(t *testing.T) {
	cleanEnv(t)

	out, _, err := execute(t, "match", `a(b)?(c*)d`, "xad", "--engine", "std")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"✓ match",
		`  group 0: "ad" [1,3)`,
		"  group 1: <unset>",
		`  group 2: "" [2,2)`,
		"",
	}, "\n"), out)
}

func TestMatchCommand_NoMatch(t *testing.T) {
	cleanEnv(t)

	out, _, err := execute(t, "match", `00\d`, "00A")
	require.NoError(t, err)
	assert.Contains(t, out, "✗ no match")
}

func TestMatchCommand_JSON(t *testing.T) {
	cleanEnv(t)

	out, _, err := execute(t, "match", `^(\d{3})-(\d{3,8})$`, "010-123456", "--format", "json", "--engine", "pcre")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   MatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "pcre", resp.Data.Engine)
	assert.True(t, resp.Data.Found)
	require.Len(t, resp.Data.Groups, 3)
	assert.Equal(t, matcher.Group{Text: "123456", Start: 4, End: 10, Set: true}, resp.Data.Groups[2])
}

func TestMatchCommand_RejectedPattern(t *testing.T) {
	cleanEnv(t)

	out, _, err := execute(t, "match", "(", "x", "--format", "json", "--engine", "coregex")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodePattern, resp.Error.Code)
	assert.Equal(t, map[string]any{"engine": "coregex", "pattern": "("}, resp.Error.Details)
}

func TestMatchCommand_InputTooLarge(t *testing.T) {
	cleanEnv(t)
	t.Setenv("RXHARNESS_MAX_SUBJECT", "4")

	out, _, err := execute(t, "match", "a", "aaaaa")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, matcher.ErrInputTooLarge)
	assert.Contains(t, out, "Error [E_INPUT]")
}

func TestMatchCommand_Args(t *testing.T) {
	cleanEnv(t)

	_, _, err := execute(t, "match", "only-pattern")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg")
}
