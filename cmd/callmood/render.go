package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"callmood/internal/emotion"
	"callmood/internal/render"
)

// ErrNoOutput is returned when the --output flag is not set.
var ErrNoOutput = errors.New("output file is required (use --output)")

func newRenderCommand() *cobra.Command {
	var (
		output       string
		title        string
		ignoreBursts bool
	)

	cmd := &cobra.Command{
		Use:   "render <analysis.json|->",
		Short: "Render the dashboard charts as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return ErrNoOutput
			}
			d, err := loadDashboard(args[0], cmd.InOrStdin(), emotion.Options{IgnoreBursts: ignoreBursts})
			if err != nil {
				return err
			}
			if title == "" {
				title = pageTitle(args[0], d)
			}
			return writeHTML(output, d, title)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "HTML file to write")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	cmd.Flags().BoolVar(&ignoreBursts, "ignore-bursts", false, "leave burst detections out of the statistics")

	return cmd
}

func pageTitle(path string, d emotion.Dashboard) string {
	if d.CallID != "" {
		return "Call " + d.CallID
	}
	if path == stdinArg {
		return "Call analysis"
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func writeHTML(path string, d emotion.Dashboard, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := render.HTML(f, d, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
