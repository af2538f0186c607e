package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunForecast_RejectsUnknownUnits(t *testing.T) {
	old := forecastUnits
	t.Cleanup(func() { forecastUnits = old })

	forecastUnits = "kelvin"
	err := runForecast(&cobra.Command{}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown units "kelvin"`)
}

func TestRunSuppressionPut_RejectsBadUntil(t *testing.T) {
	old := suppressUntil
	t.Cleanup(func() { suppressUntil = old })

	suppressUntil = "next tuesday"
	err := runSuppressionPut(&cobra.Command{}, []string{"someone@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --until")
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"forecast", "suppression", "replay", "serve"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}
