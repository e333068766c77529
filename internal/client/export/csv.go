// Package export writes the lead grid out as CSV and optionally stores the
// file in an S3-compatible bucket.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/client/grid"
	"github.com/dmitrijs2005/leadgrid/internal/client/models"
)

// Columns is the CSV header, in grid column order.
var Columns = []string{"id", "first_name", "last_name", "email", "company", "status", "score", "lead_value", "created_at"}

// maxPages stops a walk over a backend that never reports its last row.
const maxPages = 10_000

type Exporter struct {
	source   grid.Fetcher
	pageSize int
}

func NewExporter(source grid.Fetcher, pageSize int) *Exporter {
	if pageSize <= 0 {
		pageSize = grid.DefaultBlockSize
	}
	return &Exporter{source: source, pageSize: pageSize}
}

// WriteCSV pages through every lead matching filters and writes them to w.
// It returns the number of data rows written.
func (e *Exporter) WriteCSV(ctx context.Context, w io.Writer, filters grid.FilterModel) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return 0, err
	}

	written := 0
	for page := 0; page < maxPages; page++ {
		start := page * e.pageSize
		res, err := e.source.GetRows(ctx, grid.Request{StartRow: start, EndRow: start + e.pageSize, Filters: filters})
		if err != nil {
			return written, fmt.Errorf("export rows %d-%d: %w", start, start+e.pageSize, err)
		}
		for _, l := range res.Rows {
			if err := cw.Write(record(l)); err != nil {
				return written, err
			}
			written++
		}
		if res.LastRow != grid.UnknownLastRow || len(res.Rows) == 0 {
			break
		}
	}

	cw.Flush()
	return written, cw.Error()
}

func record(l models.Lead) []string {
	score, value, created := "", "", ""
	if l.Score != nil {
		score = strconv.Itoa(*l.Score)
	}
	if l.LeadValue != nil {
		value = strconv.FormatFloat(*l.LeadValue, 'f', 2, 64)
	}
	if !l.CreatedAt.IsZero() {
		created = l.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []string{l.ID.String(), l.FirstName, l.LastName, l.Email, l.Company, string(l.Status), score, value, created}
}
