package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	StrongColor     = color.New(color.FgGreen, color.Bold) // large advantage
	ModerateColor   = color.New(color.FgYellow)            // noticeable advantage
	SlightColor     = color.New(color.FgCyan)              // small advantage
	NegligibleColor = color.New(color.Faint)               // within noise
)

// Regime colors for console output.
var (
	HighFrequencyColor = color.New(color.FgMagenta)
	ConventionalColor  = color.New(color.FgBlue)
)

// GetColorLabel returns a colored advantage label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(difference float64) string {
	text := schema.GetPlainLabel(difference)

	switch text {
	case schema.StrongAdvantage:
		return StrongColor.Sprint(text)
	case schema.ModerateAdvantage:
		return ModerateColor.Sprint(text)
	case schema.SlightAdvantage:
		return SlightColor.Sprint(text)
	default:
		return NegligibleColor.Sprint(text)
	}
}

// GetRegimeLabel returns the regime name, colored when requested.
func GetRegimeLabel(regime schema.Regime, useColors bool) string {
	text := string(regime)
	if !useColors {
		return text
	}
	if regime == schema.ConventionalRegime {
		return ConventionalColor.Sprint(text)
	}
	return HighFrequencyColor.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cached results.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".robotsampler_cache.db"
	}
	return filepath.Join(homeDir, ".robotsampler_cache.db")
}

// GetStoreDBFilePath returns the path to the SQLite DB file for run tracking.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".robotsampler_runs.db"
	}
	return filepath.Join(homeDir, ".robotsampler_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
