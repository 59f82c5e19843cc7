package tui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Entry is one leaderboard line.
type Entry struct {
	ID    string
	Score int
}

// boardSize is the number of ranks shown.
const boardSize = 5

// ReferenceBoard returns the fixed defenders shown before and after a session.
func ReferenceBoard() []Entry {
	return []Entry{
		{ID: "007", Score: 1700},
		{ID: "010", Score: 1428},
		{ID: "021", Score: 1322},
		{ID: "003", Score: 1072},
		{ID: "014", Score: 1034},
	}
}

// Merge places the subject's score on board, replacing an existing entry with
// the same ID, and returns the top five by score. An empty subject leaves the
// board unchanged apart from ordering. board is not modified.
func Merge(board []Entry, subject string, score int) []Entry {
	rows := append([]Entry(nil), board...)
	if subject != "" {
		found := false
		for i := range rows {
			if rows[i].ID == subject {
				rows[i].Score = score
				found = true
			}
		}
		if !found {
			rows = append(rows, Entry{ID: subject, Score: score})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	if len(rows) > boardSize {
		rows = rows[:boardSize]
	}
	return rows
}

// Ranked reports whether subject appears on rows.
func Ranked(rows []Entry, subject string) bool {
	if subject == "" {
		return false
	}
	for _, r := range rows {
		if r.ID == subject {
			return true
		}
	}
	return false
}

// buildBoardTable renders rows as a table. The cursor sits on the subject's
// row so the selected style highlights it; without a subject nothing is
// highlighted.
func buildBoardTable(rows []Entry, subject string) table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Participant", Width: 12},
		{Title: "Score", Width: 7},
	}
	tableRows := make([]table.Row, 0, len(rows))
	cursor := -1
	for i, r := range rows {
		tableRows = append(tableRows, table.Row{
			fmt.Sprintf("%d", i+1),
			r.ID,
			fmt.Sprintf("%d", r.Score),
		})
		if subject != "" && r.ID == subject {
			cursor = i
		}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(len(tableRows)+2),
	)
	styles := boardStyles(cursor >= 0)
	t.SetStyles(styles)
	if cursor >= 0 {
		t.SetCursor(cursor)
	}
	return t
}

func boardStyles(highlight bool) table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	if highlight {
		styles.Selected = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#FFF2A8")).
			Bold(true)
	} else {
		styles.Selected = lipgloss.NewStyle()
	}
	return styles
}
