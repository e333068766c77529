package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderLeads(t *testing.T) {
	score := 42
	value := 99.5
	rows := []models.Lead{
		{ID: "7", FirstName: "Ann", LastName: "Lee", Email: "ann@acme.io", Company: "Acme", Status: models.StatusWon, Score: &score, LeadValue: &value, CreatedAt: time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)},
		{ID: "8", FirstName: "Bob", Email: "bob@acme.io", Status: models.StatusLost},
	}

	out := renderLeads(rows, 20)
	for _, want := range []string{"EMAIL", "21", "22", "Ann Lee", "ann@acme.io", "won", "42", "99.50", "2025-01-0", "Bob", "lost"} {
		assert.Contains(t, out, want)
	}
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 6, "border, header, separator, two rows, border")

	assert.Contains(t, renderLeads(nil, 0), "No leads.")
}

func TestPageFooter(t *testing.T) {
	assert.Contains(t, pageFooter(0, 20, 45, true), "Page 1 of 3 (45 leads)")
	assert.Contains(t, pageFooter(0, 20, 0, true), "Page 1 of 1 (0 leads)")
	assert.Contains(t, pageFooter(1, 20, 40, false), "Page 2 (more rows available")
}
