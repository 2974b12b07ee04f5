package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"property-import-backend/internal/models"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF005F")).Bold(true)
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true)
)

func statusText(s models.JobStatus) string {
	switch s {
	case models.JobStatusCompleted:
		return okStyle.Render(string(s))
	case models.JobStatusFailed:
		return failStyle.Render(string(s))
	default:
		return string(s)
	}
}

func printJob(w io.Writer, job models.ImportJob) {
	fmt.Fprintf(w, "job %s %s: source=%s found=%d imported=%d\n",
		job.ID, statusText(job.Status), job.Source, job.PropertiesFound, job.PropertiesImported)
	for _, e := range job.Errors {
		fmt.Fprintf(w, "  %s %s\n", failStyle.Render("error:"), e)
	}
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func listingRows(listings []models.ScrapedListing) [][]string {
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{
			truncate(l.Title, 48),
			fmt.Sprintf("%s %.0f", l.Currency, l.Price),
			truncate(l.Location, 32),
			fmt.Sprintf("%d", len(l.Images)),
		})
	}
	return rows
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
