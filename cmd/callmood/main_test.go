package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"callmood/internal/emotion"
)

const sampleAnalysis = `{
  "success": true,
  "call_id": "c42",
  "results": {
    "prosody": [
      {"time_start": 0, "time_end": 2.5, "speaker": "Customer", "top_emotions": [{"name": "Joy", "score": 0.81, "category": "positive"}]},
      {"time_start": "2.5", "time_end": "5", "speaker": "Agent", "top_emotions": [{"name": "Calmness", "score": "0.6"}]}
    ],
    "burst": [
      {"time_start": 1, "time_end": 1.4, "top_emotions": [{"name": "Amusement", "score": 0.3}]}
    ]
  }
}`

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newTransformCommand()
	if args[0] == "render" {
		cmd = newRenderCommand()
	}
	cmd.SetArgs(args[1:])
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestTransformJSON(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, sampleAnalysis, "transform", "-")
	require.NoError(t, err)

	var d emotion.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "c42", d.CallID)
	assert.Equal(t, emotion.OutcomeOK, d.Outcome)
	assert.Len(t, d.Bundle.ChartData, 2)
}

func TestTransformYAML(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, sampleAnalysis, "transform", "-", "--format", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "c42", doc["call_id"])
	assert.Equal(t, "ok", doc["outcome"])
}

func TestTransformTable(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, sampleAnalysis, "transform", "-", "-f", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Overview")
	assert.Contains(t, out, "Joy")
}

func TestTransformIgnoreBursts(t *testing.T) {
	t.Parallel()

	with, err := loadDashboard(stdinArg, strings.NewReader(sampleAnalysis), emotion.Options{})
	require.NoError(t, err)
	without, err := loadDashboard(stdinArg, strings.NewReader(sampleAnalysis), emotion.Options{IgnoreBursts: true})
	require.NoError(t, err)

	assert.Contains(t, statNames(with), "Amusement")
	assert.NotContains(t, statNames(without), "Amusement")
}

func statNames(d emotion.Dashboard) []string {
	var names []string
	for _, stats := range d.Bundle.CategorizedEmotions {
		for _, s := range stats {
			names = append(names, s.Name)
		}
	}
	return names
}

func TestTransformRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, sampleAnalysis, "transform", "-", "--format", "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestTransformBadInput(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "{not json", "transform", "-")
	assert.Error(t, err)

	_, err = runCLI(t, "", "transform", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRenderWritesHTML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "analysis.json")
	require.NoError(t, os.WriteFile(in, []byte(sampleAnalysis), 0o600))
	outPath := filepath.Join(dir, "chart.html")

	_, err := runCLI(t, "", "render", in, "-o", outPath)
	require.NoError(t, err)

	html, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Call c42")
}

func TestRenderRequiresOutput(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, sampleAnalysis, "render", "-")
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestPageTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Call x", pageTitle("a.json", emotion.Dashboard{CallID: "x"}))
	assert.Equal(t, "a", pageTitle("dir/a.json", emotion.Dashboard{}))
	assert.Equal(t, "Call analysis", pageTitle(stdinArg, emotion.Dashboard{}))
}
