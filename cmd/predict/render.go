package main

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"airpredict/ml"
	"airpredict/predict"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0a84ff")).
			Bold(true).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#155724")).
			Background(lipgloss.Color("#d4edda")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#c3e6cb")).
			Padding(0, 1)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#721c24")).
			Background(lipgloss.Color("#f8d7da")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#f5c6cb")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderTitle(s string) string {
	return titleStyle.Render(s)
}

// renderResult shows a dissatisfied passenger in the failure style and
// everything else in the success style.
func renderResult(r predict.Result) string {
	if r.Kind == predict.KindSatisfaction && !r.Satisfied {
		return failureStyle.Render(r.Message)
	}
	return successStyle.Render(r.Message)
}

func renderError(err error) string {
	return failureStyle.Render("Error: " + err.Error())
}

// renderRow prints the encoded input as a two-column table.
func renderRow(names []string, values []float64) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Column", "Value").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for i, name := range names {
		t.Row(name, strconv.FormatFloat(values[i], 'f', -1, 64))
	}
	return t.Render()
}

func renderArtifacts(files []ml.ArtifactFile) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Artifact", "Kind", "Path", "Bytes", "SHA-256").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, f := range files {
		digest := f.SHA256
		if len(digest) > 12 {
			digest = digest[:12]
		}
		t.Row(f.Name, f.Kind, f.Path, strconv.FormatInt(f.Size, 10), digest)
	}
	return t.Render()
}
