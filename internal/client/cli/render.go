package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/leadgrid/internal/client/metrics"
	"github.com/dmitrijs2005/leadgrid/internal/client/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var statusColors = map[models.LeadStatus]lipgloss.Color{
	models.StatusNew:       "12",
	models.StatusContacted: "11",
	models.StatusQualified: "14",
	models.StatusWon:       "2",
	models.StatusLost:      "1",
}

// renderLeads draws rows as a table. first is the grid index of rows[0].
func renderLeads(rows []models.Lead, first int) string {
	if len(rows) == 0 {
		return dimStyle.Render("No leads.")
	}

	data := make([][]string, len(rows))
	for i, l := range rows {
		data[i] = []string{
			strconv.Itoa(first + i + 1),
			l.ID.String(),
			strings.TrimSpace(l.FirstName + " " + l.LastName),
			l.Email,
			l.Company,
			string(l.Status),
			optInt(l.Score),
			optMoney(l.LeadValue),
			optDate(l),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("#", "ID", "NAME", "EMAIL", "COMPANY", "STATUS", "SCORE", "VALUE", "CREATED").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 5 && row >= 0 && row < len(rows) {
				if c, ok := statusColors[rows[row].Status]; ok {
					return cellStyle.Foreground(c)
				}
			}
			return cellStyle
		})

	return t.String()
}

func pageFooter(page, size, total int, known bool) string {
	if known {
		pages := (total + size - 1) / size
		if pages == 0 {
			pages = 1
		}
		return dimStyle.Render(fmt.Sprintf("Page %d of %d (%d leads)", page+1, pages, total))
	}
	return dimStyle.Render(fmt.Sprintf("Page %d (more rows available, 'next' to continue)", page+1))
}

func renderStats(samples []metrics.Sample) string {
	if len(samples) == 0 {
		return dimStyle.Render("No requests yet.")
	}

	data := make([][]string, len(samples))
	for i, s := range samples {
		data[i] = []string{s.Name, s.Labels, strconv.FormatFloat(s.Value, 'f', -1, 64)}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("METRIC", "LABELS", "VALUE").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func optDate(l models.Lead) string {
	if l.CreatedAt.IsZero() {
		return ""
	}
	return l.CreatedAt.Local().Format("2006-01-02")
}
