package main

import (
	"time"

	"github.com/spf13/cobra"

	"colloscope/internal/config"
	"colloscope/internal/export"
	"colloscope/internal/model"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "colloscope",
	Short: "Colloscope normalization and export service",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(serveCmd, normalizeCmd, exportCmd, nextCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadEnvironment resolves the pieces every subcommand needs: the config,
// its timezone, and the parsed holiday calendar.
func loadEnvironment() (*config.Config, *loadedEnv, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	holidays, err := cfg.HolidayRanges(loc)
	if err != nil {
		return nil, nil, err
	}

	return cfg, &loadedEnv{loc: loc, holidays: holidays}, nil
}

type loadedEnv struct {
	loc      *time.Location
	holidays []model.HolidayRange
}

// newEngine builds the export engine from configured durations and grid
// pagination.
func newEngine(cfg *config.Config) *export.Engine {
	def, bySubject := cfg.SubjectDurations()
	return &export.Engine{
		DefaultDuration: def,
		Durations:       bySubject,
		WeeksPerPage:    cfg.Grid.WeeksPerPage,
	}
}
