package cli

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/client/client"
	"github.com/dmitrijs2005/leadgrid/internal/client/grid"
	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/dmitrijs2005/leadgrid/internal/client/services"
)

// filterColumns are the columns the backend can filter on.
var filterColumns = []string{"first_name", "email", "company", "status"}

func (a *App) pageSize() int {
	return a.rows.BlockSize()
}

// Page shows page n (1-based) or the current page when no argument is given.
func (a *App) Page(ctx context.Context, args []string) error {
	page := a.currentPage()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			a.println("Usage: page [n], n >= 1")
			return errors.New("invalid page")
		}
		page = n - 1
	}
	return a.show(ctx, page)
}

func (a *App) Next(ctx context.Context) error {
	return a.show(ctx, a.currentPage()+1)
}

func (a *App) Prev(ctx context.Context) error {
	page := a.currentPage()
	if page == 0 {
		a.println("Already on the first page.")
		return nil
	}
	return a.show(ctx, page-1)
}

func (a *App) currentPage() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

// show loads a page from the backend, or from stored snapshots when the
// backend is unreachable, and prints it.
func (a *App) show(ctx context.Context, page int) error {
	size := a.pageSize()
	start, end := page*size, (page+1)*size

	if a.Mode() == ModeOffline {
		return a.showSnapshot(ctx, page, start, end)
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	rows, err := a.rows.Window(ctx, start, end)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
			return a.showSnapshot(ctx, page, start, end)
		}
		a.printf("Could not load page %d: %s\n", page+1, services.DisplayMessage(err))
		return err
	}

	if len(rows) == 0 && page > 0 {
		a.printf("Page %d is past the last row.\n", page+1)
		return nil
	}

	a.setPage(page, rows)
	total, known := a.rows.RowCount()
	a.println(renderLeads(rows, start))
	a.println(pageFooter(page, size, total, known))
	return nil
}

func (a *App) showSnapshot(ctx context.Context, page, start, end int) error {
	rows, at, err := a.rows.Snapshot(ctx, start, end)
	if err != nil {
		if errors.Is(err, grid.ErrNoSnapshot) {
			a.printf("Offline: page %d has not been cached.\n", page+1)
		} else {
			a.printf("Offline: could not read cached page: %v\n", err)
		}
		return err
	}

	a.setPage(page, rows)
	a.println(renderLeads(rows, start))
	a.printf("Page %d (offline copy from %s)\n", page+1, at.Local().Format(time.DateTime))
	return nil
}

func (a *App) setPage(page int, rows []models.Lead) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.page = page
	a.current = rows
}

// Filter sets a "contains" filter on a column and jumps to the first page.
func (a *App) Filter(ctx context.Context, args []string) error {
	col := strings.ToLower(args[0])
	if !validColumn(col) {
		a.printf("Unknown column %q. Filterable columns: %s\n", col, strings.Join(filterColumns, ", "))
		return errors.New("unknown column")
	}

	fm := a.rows.Filters()
	fm[col] = grid.Contains(strings.Join(args[1:], " "))
	a.rows.SetFilters(fm)
	return a.show(ctx, 0)
}

// Unfilter drops the filter on one column, or every filter without args.
func (a *App) Unfilter(ctx context.Context, args []string) error {
	fm := grid.FilterModel{}
	if len(args) > 0 {
		fm = a.rows.Filters()
		delete(fm, strings.ToLower(args[0]))
	}
	a.rows.SetFilters(fm)
	return a.show(ctx, 0)
}

func (a *App) Filters(ctx context.Context) error {
	fm := a.rows.Filters()
	if len(fm) == 0 {
		a.println("No filters.")
		return nil
	}
	cols := make([]string, 0, len(fm))
	for c := range fm {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		a.printf("%s %s %q\n", c, fm[c].Type, fm[c].Filter)
	}
	return nil
}

// Refresh drops every cached block and reloads the current page.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if _, err := a.rows.Refresh(ctx); err != nil {
		a.log.Debug(ctx, "refresh of visible window failed", "error", err)
	}
	return a.show(ctx, a.currentPage())
}

func validColumn(col string) bool {
	for _, c := range filterColumns {
		if c == col {
			return true
		}
	}
	return false
}

// lookup finds a lead on the page that is currently shown.
func (a *App) lookup(id string) (models.Lead, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, l := range a.current {
		if l.ID.String() == id {
			return l, true
		}
	}
	return models.Lead{}, false
}

// Create asks for the lead fields and creates it on the backend.
func (a *App) Create(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	form, err := promptForm(a.reader, a.out, models.LeadForm{Status: string(models.StatusNew)})
	if err != nil {
		return err
	}
	in, err := form.Input()
	if err != nil {
		a.printf("Invalid lead: %v\n", err)
		return err
	}

	l, err := a.leads.Create(ctx, in)
	if err != nil {
		a.printf("Could not create lead: %s\n", services.DisplayMessage(err))
		return err
	}

	a.printf("Created lead %s\n", l.ID)
	return a.show(ctx, a.currentPage())
}

// Edit updates a lead shown on the current page.
func (a *App) Edit(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	id := args[0]
	current, ok := a.lookup(id)
	if !ok {
		a.printf("Lead %s is not on the current page.\n", id)
		return errors.New("lead not shown")
	}

	form, err := promptForm(a.reader, a.out, models.FormFromLead(current))
	if err != nil {
		return err
	}
	in, err := form.Input()
	if err != nil {
		a.printf("Invalid lead: %v\n", err)
		return err
	}

	if _, err := a.leads.Update(ctx, current.ID, in); err != nil {
		a.printf("Could not update lead: %s\n", services.DisplayMessage(err))
		return err
	}

	a.printf("Updated lead %s\n", id)
	return a.show(ctx, a.currentPage())
}

// Delete removes a lead after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	id := models.LeadID(args[0])
	ok, err := Confirm(a.reader, "Delete lead "+id.String()+"?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled.")
		return nil
	}

	if err := a.leads.Delete(ctx, id); err != nil {
		a.printf("Could not delete lead: %s\n", services.DisplayMessage(err))
		return err
	}

	a.printf("Deleted lead %s\n", id)
	return a.show(ctx, a.currentPage())
}
