package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"colloscope/internal/normalize"
)

var normalizeOut string

var normalizeCmd = &cobra.Command{
	Use:   "normalize [raw.csv]",
	Short: "Normalize a raw colloscope export into canonical CSV",
	Long: "Reads a raw spreadsheet export (file argument, or stdin when omitted),\n" +
		"applies the v1 format contract, and writes the canonical table.",
	Args: cobra.MaximumNArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeOut, "out", "o", "", "output file (default stdout)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	rows, err := normalize.ReadCSV(in)
	if err != nil {
		return err
	}

	canonical := normalize.Normalize(rows)
	if len(canonical) == 0 {
		return fmt.Errorf("input too short to normalize (%d rows)", len(rows))
	}

	var out io.Writer = os.Stdout
	if normalizeOut != "" {
		f, err := os.Create(normalizeOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return normalize.WriteCSV(out, canonical)
}
