package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"colloscope/internal/capture"
	"colloscope/internal/config"
	"colloscope/internal/export"
	"colloscope/internal/model"
	"colloscope/internal/query"
)

var (
	exportClass  string
	exportGroup  string
	exportFormat string
	exportOut    string
	exportPNG    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a group's schedule in one of: grid, flat, agenda, task-list",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportClass, "class", "", "class identifier (canonical CSV base name)")
	exportCmd.Flags().StringVar(&exportGroup, "group", "", "group code")
	exportCmd.Flags().StringVar(&exportFormat, "format", "flat", "export format")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportPNG, "png", false, "rasterize grid pages to PNG files (grid format only)")
	_ = exportCmd.MarkFlagRequired("class")
	_ = exportCmd.MarkFlagRequired("group")
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	cfg, env, err := loadEnvironment()
	if err != nil {
		return err
	}

	store := model.NewStore()
	if err := store.LoadDir(cfg.DataDir, env.holidays, env.loc); err != nil {
		return err
	}

	c, ok := store.Get(exportClass)
	if !ok {
		return fmt.Errorf("unknown class %q (available: %s)",
			exportClass, strings.Join(store.Classes(), ", "))
	}

	colles := query.SortByTime(query.ForGroup(c.Colles, exportGroup))
	engine := newEngine(cfg)

	if format == export.FormatGrid && exportPNG {
		return exportGridPNGs(cmd, cfg, engine, colles, c)
	}

	var out io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return engine.Render(format, colles, exportGroup, c.Holidays, out)
}

// exportGridPNGs rasterizes each grid page into <out>-<n>.png.
func exportGridPNGs(cmd *cobra.Command, cfg *config.Config, engine *export.Engine, colles []model.Colle, c *model.Colloscope) error {
	if len(colles) == 0 {
		return export.ErrNoSessions
	}

	base := exportOut
	if base == "" {
		base = "colloscope"
	}
	base = strings.TrimSuffix(base, ".png")

	pages := engine.BuildGrid(colles, exportGroup, c.Holidays)
	pngs, err := capture.GridPNGs(cmd.Context(), pages, capture.Options{
		Width:  cfg.Grid.Width,
		Height: cfg.Grid.Height,
	})
	if err != nil {
		return err
	}

	for i, png := range pngs {
		name := fmt.Sprintf("%s-%d.png", base, i+1)
		if err := os.WriteFile(name, png, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
