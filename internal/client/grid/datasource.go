package grid

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/dmitrijs2005/leadgrid/internal/logging"
)

// Lister is the transport call the data source needs.
type Lister interface {
	ListLeads(ctx context.Context, params url.Values) (*models.LeadPage, error)
}

// Result is a fulfilled row window.
type Result struct {
	Rows    []models.Lead
	LastRow int
}

// DataSource serves row windows from the backend. It is safe for
// concurrent use.
type DataSource struct {
	client Lister
	log    logging.Logger
}

func NewDataSource(c Lister, log logging.Logger) *DataSource {
	if log == nil {
		log = logging.Discard()
	}
	return &DataSource{client: c, log: log}
}

// GetRows issues exactly one backend request for req. Any transport,
// status or decode failure is reported as ErrFetch with no rows.
func (d *DataSource) GetRows(ctx context.Context, req Request) (Result, error) {
	params, dropped, err := BuildQuery(req)
	if err != nil {
		return Result{}, err
	}
	if len(dropped) > 0 {
		d.log.Debug(ctx, "ignoring unsupported filters", "columns", dropped)
	}

	page, err := d.client.ListLeads(ctx, params)
	if err != nil {
		d.log.Warn(ctx, "row window failed", "start", req.StartRow, "end", req.EndRow, "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if page == nil {
		return Result{}, fmt.Errorf("%w: empty response", ErrFetch)
	}

	rows := page.Data
	if rows == nil {
		rows = []models.Lead{}
	}
	return Result{Rows: rows, LastRow: LastRow(page.Total, req.EndRow)}, nil
}
