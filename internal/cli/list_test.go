package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxharness/internal/harness"
)

func TestListCommand_Builtin(t *testing.T) {
	cleanEnv(t)

	out, _, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "builtin: Core regular-expression syntax (21 cases)")
	assert.Contains(t, out, `pattern "ja."  subject "java"  expect groups{0="jav"}`)
	assert.Contains(t, out, `expect groups{0="ac" 1=<unset>}`)
	assert.Contains(t, out, "expect match=false")
}

func TestListCommand_FileJSON(t *testing.T) {
	dir := cleanEnv(t)
	path := writeFile(t, dir, "anchors.yaml", passingCatalog)

	out, _, err := execute(t, "list", path, "--format", "json", "--filter", "wild*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   ListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "anchors", resp.Data.Catalog)
	assert.Equal(t, []ListedCase{{Name: "wildcard", Pattern: "ja.", Subject: "java", Expect: `groups{0="jav"}`}}, resp.Data.Cases)
}

func TestListCommand_LoadError(t *testing.T) {
	cleanEnv(t)

	_, _, err := execute(t, "list", "absent.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDescribeExpectation(t *testing.T) {
	tests := []struct {
		expect harness.Expectation
		want   string
	}{
		{harness.BooleanMatch(true), "match=true"},
		{harness.BooleanMatch(false), "match=false"},
		{harness.GroupCapture(map[int]*string{2: harness.Text("b"), 0: harness.Text(`"q"`)}), `groups{0="\"q\"" 2="b"}`},
		{harness.GroupCapture(map[int]*string{1: nil}), "groups{1=<unset>}"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, describeExpectation(tt.expect))
		})
	}
}
