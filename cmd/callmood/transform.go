package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"callmood/internal/emotion"
	"callmood/internal/model"
	"callmood/internal/render"
)

// Output formats.
const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

const stdinArg = "-"

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("format must be json, yaml or table")

func newTransformCommand() *cobra.Command {
	var (
		format       string
		ignoreBursts bool
	)

	cmd := &cobra.Command{
		Use:   "transform <analysis.json|->",
		Short: "Build the dashboard for a saved analysis response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDashboard(args[0], cmd.InOrStdin(), emotion.Options{IgnoreBursts: ignoreBursts})
			if err != nil {
				return err
			}
			return writeDashboard(cmd.OutOrStdout(), d, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, yaml or table")
	cmd.Flags().BoolVar(&ignoreBursts, "ignore-bursts", false, "leave burst detections out of the statistics")

	return cmd
}

// loadDashboard reads an analysis response from path, or stdin for "-".
func loadDashboard(path string, stdin io.Reader, opts emotion.Options) (emotion.Dashboard, error) {
	var r io.Reader = stdin
	if path != stdinArg {
		f, err := os.Open(path)
		if err != nil {
			return emotion.Dashboard{}, fmt.Errorf("open analysis: %w", err)
		}
		defer f.Close()
		r = f
	}

	var resp model.AnalysisResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return emotion.Dashboard{}, fmt.Errorf("decode analysis: %w", err)
	}
	return emotion.BuildDashboard(&resp, opts), nil
}

func writeDashboard(w io.Writer, d emotion.Dashboard, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatTable:
		return render.Table(w, d)
	default:
		return ErrUnknownFormat
	}
}
