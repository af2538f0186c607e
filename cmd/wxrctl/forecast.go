package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wxrmessenger/internal/forecasts"
	"wxrmessenger/internal/types"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print the reply segments for a coordinate",
	Long:  "Fetch a forecast for a coordinate and print it exactly as it would be sent, one segment per block.",
	RunE:  runForecast,
}

var (
	forecastLat   float64
	forecastLon   float64
	forecastUnits string
)

func init() {
	forecastCmd.Flags().Float64Var(&forecastLat, "lat", 0, "Latitude in decimal degrees (required)")
	forecastCmd.Flags().Float64Var(&forecastLon, "lon", 0, "Longitude in decimal degrees (required)")
	forecastCmd.Flags().StringVar(&forecastUnits, "units", string(types.UnitsMetric), "Unit system: metric or imperial")
	_ = forecastCmd.MarkFlagRequired("lat")
	_ = forecastCmd.MarkFlagRequired("lon")

	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	units := types.UnitSystem(strings.ToLower(forecastUnits))
	if units != types.UnitsMetric && units != types.UnitsImperial {
		return fmt.Errorf("unknown units %q (want metric or imperial)", forecastUnits)
	}

	ctx := cmd.Context()
	env, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	segments, err := forecasts.NewService(env.clients.Weather, env.logger).ForecastFor(ctx, forecastLat, forecastLon, units)
	if err != nil {
		return fmt.Errorf("forecast: %w", err)
	}

	out := cmd.OutOrStdout()
	for i, s := range segments {
		fmt.Fprintf(out, "--- %d/%d (%d chars)\n%s\n", i+1, len(segments), len([]rune(s)), s)
	}
	return nil
}
