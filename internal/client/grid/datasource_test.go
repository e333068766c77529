package grid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/dmitrijs2005/leadgrid/internal/client/client"
	"github.com/dmitrijs2005/leadgrid/internal/client/fakeapi"
	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	mu    sync.Mutex
	page  *models.LeadPage
	err   error
	calls []url.Values
}

func (f *fakeLister) ListLeads(_ context.Context, params url.Values) (*models.LeadPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)
	return f.page, f.err
}

func leads(n int) []models.Lead {
	out := make([]models.Lead, n)
	for i := range out {
		out[i] = models.Lead{ID: models.LeadID(fmt.Sprint(i + 1)), FirstName: fmt.Sprintf("Lead%d", i+1)}
	}
	return out
}

func TestGetRows_PageBoundary(t *testing.T) {
	fl := &fakeLister{page: &models.LeadPage{Data: leads(20), Total: 45}}
	ds := NewDataSource(fl, nil)

	res, err := ds.GetRows(context.Background(), Request{StartRow: 0, EndRow: 20})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 20)
	assert.Equal(t, UnknownLastRow, res.LastRow)

	fl.page = &models.LeadPage{Data: leads(5), Total: 45}
	res, err = ds.GetRows(context.Background(), Request{StartRow: 40, EndRow: 60})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 5)
	assert.Equal(t, 45, res.LastRow)

	require.Len(t, fl.calls, 2)
	assert.Equal(t, "1", fl.calls[0].Get("page"))
	assert.Equal(t, "3", fl.calls[1].Get("page"))
	assert.Equal(t, "20", fl.calls[1].Get("limit"))
}

func TestGetRows_FilterFlattening(t *testing.T) {
	fl := &fakeLister{page: &models.LeadPage{}}
	ds := NewDataSource(fl, nil)

	_, err := ds.GetRows(context.Background(), Request{StartRow: 0, EndRow: 20, Filters: FilterModel{
		"email": Contains("acme"),
		"score": {Type: "lessThan", Filter: "10"},
	}})
	require.NoError(t, err)

	require.Len(t, fl.calls, 1)
	assert.Equal(t, url.Values{"page": {"1"}, "limit": {"20"}, "email_contains": {"acme"}}, fl.calls[0])
}

func TestGetRows_FailureIsFetchError(t *testing.T) {
	fl := &fakeLister{err: client.ErrUnavailable}
	ds := NewDataSource(fl, nil)

	res, err := ds.GetRows(context.Background(), Request{StartRow: 0, EndRow: 20})
	require.ErrorIs(t, err, ErrFetch)
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Nil(t, res.Rows)

	fl.err = nil
	fl.page = nil
	_, err = ds.GetRows(context.Background(), Request{StartRow: 0, EndRow: 20})
	require.ErrorIs(t, err, ErrFetch)
}

func TestGetRows_RejectsBadWindowsWithoutRequest(t *testing.T) {
	fl := &fakeLister{page: &models.LeadPage{}}
	ds := NewDataSource(fl, nil)

	_, err := ds.GetRows(context.Background(), Request{StartRow: 10, EndRow: 30})
	require.ErrorIs(t, err, ErrUnalignedWindow)
	_, err = ds.GetRows(context.Background(), Request{StartRow: 10, EndRow: 10})
	require.ErrorIs(t, err, ErrInvalidWindow)
	assert.Empty(t, fl.calls)
}

func TestGetRows_EmptyDataIsEmptySlice(t *testing.T) {
	ds := NewDataSource(&fakeLister{page: &models.LeadPage{Total: 0}}, nil)
	res, err := ds.GetRows(context.Background(), Request{StartRow: 0, EndRow: 20})
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Equal(t, 0, res.LastRow)
}

func newLoggedInClient(t *testing.T, n int) (*fakeapi.Server, *client.HTTPClient) {
	t.Helper()
	api := fakeapi.New()
	for i := 0; i < n; i++ {
		company := "Globex"
		if i%3 == 0 {
			company = "Acme Corp"
		}
		api.AddLead(models.LeadInput{FirstName: fmt.Sprintf("F%d", i), LastName: "L", Email: fmt.Sprintf("l%d@x.io", i), Company: company})
	}
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	jar, err := client.NewPersistentJar(context.Background(), ts.URL, nil, nil)
	require.NoError(t, err)
	c, err := client.NewHTTPClient(ts.URL, jar)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Register(ctx, "u@x.io", "pw")
	require.NoError(t, err)
	_, err = c.Login(ctx, "u@x.io", "pw")
	require.NoError(t, err)
	return api, c
}

func TestGetRows_OverHTTP(t *testing.T) {
	api, c := newLoggedInClient(t, 45)
	ds := NewDataSource(c, nil)
	ctx := context.Background()

	res, err := ds.GetRows(ctx, Request{StartRow: 0, EndRow: 20})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 20)
	assert.Equal(t, UnknownLastRow, res.LastRow)

	res, err = ds.GetRows(ctx, Request{StartRow: 40, EndRow: 60})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 5)
	assert.Equal(t, 45, res.LastRow)

	res, err = ds.GetRows(ctx, Request{StartRow: 0, EndRow: 20, Filters: FilterModel{"company": Contains("acme")}})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 15)
	assert.Equal(t, 15, res.LastRow)

	q := api.LeadQueries()
	require.Len(t, q, 3)
	assert.Equal(t, "acme", q[2].Get("company_contains"))

	api.FailWith(http.MethodGet, "/leads", http.StatusInternalServerError, "db down")
	_, err = ds.GetRows(ctx, Request{StartRow: 0, EndRow: 20})
	require.ErrorIs(t, err, ErrFetch)
}

func TestGetRows_ConcurrentIdenticalWindows(t *testing.T) {
	_, c := newLoggedInClient(t, 45)
	ds := NewDataSource(c, nil)
	req := Request{StartRow: 20, EndRow: 40, Filters: FilterModel{"company": Contains("globex")}}

	const n = 8
	results := make([]Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = ds.GetRows(context.Background(), req)
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
	assert.Len(t, results[0].Rows, 10)
	assert.Equal(t, 30, results[0].LastRow)
	assert.False(t, errors.Is(errs[0], ErrFetch))
}
