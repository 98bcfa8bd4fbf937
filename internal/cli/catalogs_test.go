package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The catalogs shipped at the repository root must pass on the engines they
// are written for.
func TestShippedCatalogs(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", "..", "catalogs"))
	require.NoError(t, err)

	tests := []struct {
		catalog string
		engines []string
	}{
		{"backtracking.yaml", []string{"pcre", "auto"}},
		{"flags.cue", []string{"std", "coregex", "auto"}},
	}

	for _, tt := range tests {
		for _, engine := range tt.engines {
			t.Run(tt.catalog+"/"+engine, func(t *testing.T) {
				cleanEnv(t)

				out, _, err := execute(t, "test", filepath.Join(root, tt.catalog), "--engine", engine)
				require.NoError(t, err, out)
				assert.Contains(t, out, "All cases passed")
			})
		}
	}
}

func TestShippedCatalogs_BacktrackingRejectedByRE2(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", "..", "catalogs"))
	require.NoError(t, err)
	cleanEnv(t)

	out, _, err := execute(t, "test", filepath.Join(root, "backtracking.yaml"), "--engine", "std")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "pattern rejected by matching capability")
}
