package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rxharness/internal/config"
)

// cleanEnv runs the test in an empty directory with no RXHARNESS_* variables,
// so neither a developer's .env nor their shell changes the engine.
func cleanEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{config.EnvEngine, config.EnvParallel, config.EnvDB, config.EnvMaxSubject, config.EnvMaxPattern, config.EnvTimeout} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func decodeResponse(t *testing.T, data string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(data), &resp), data)
	return resp
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const passingCatalog = `name: anchors
description: Anchor cases
cases:
  - name: start_anchor
    pattern: '^ja'
    subject: java
    expect:
      match: true
  - name: wildcard
    pattern: 'ja.'
    subject: java
    expect:
      groups:
        0: jav
`

const failingCatalog = `name: mistakes
description: Cases with wrong expectations
cases:
  - name: greedy_is_not_lazy
    pattern: '^(\d+)(0*)$'
    subject: '10203000'
    expect:
      groups:
        2: '000'
  - name: digit
    pattern: '00\d'
    subject: '008'
    expect:
      match: true
  - name: unclosed
    pattern: '('
    subject: x
    expect:
      match: true
`
