package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		diff  float64
		label string
	}{
		{"negligible", 0.001, schema.NegligibleAdvantage},
		{"slight", 0.02, schema.SlightAdvantage},
		{"moderate", 0.07, schema.ModerateAdvantage},
		{"strong", 0.2, schema.StrongAdvantage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColorLabel(tt.diff)
			// Should contain the plain label
			assert.Contains(t, result, tt.label)
		})
	}
}

func TestGetRegimeLabel(t *testing.T) {
	assert.Equal(t, "conventional", GetRegimeLabel(schema.ConventionalRegime, false))
	assert.Equal(t, "high_frequency", GetRegimeLabel(schema.HighFrequencyRegime, false))
	assert.Contains(t, GetRegimeLabel(schema.HighFrequencyRegime, true), "high_frequency")
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".robotsampler_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir), "path %s should start with home dir %s", cachePath, homeDir)

	storePath := GetStoreDBFilePath()
	assert.Contains(t, storePath, ".robotsampler_runs.db")
	assert.NotEqual(t, cachePath, storePath)
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"yes", true, false},
		{"YES", true, false},
		{"true", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"", false, true},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
