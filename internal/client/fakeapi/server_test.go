package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	ts := httptest.NewServer(New())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := c.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestAuthFlow(t *testing.T) {
	ts, c := newClient(t)
	creds := models.Credentials{Email: "ann@acme.io", Password: "secret"}

	require.Equal(t, http.StatusUnauthorized, get(t, c, ts.URL+"/api/auth/me").StatusCode)
	require.Equal(t, http.StatusCreated, postJSON(t, c, ts.URL+"/api/auth/register", creds).StatusCode)
	require.Equal(t, http.StatusConflict, postJSON(t, c, ts.URL+"/api/auth/register", creds).StatusCode)

	bad := models.Credentials{Email: creds.Email, Password: "nope"}
	require.Equal(t, http.StatusUnauthorized, postJSON(t, c, ts.URL+"/api/auth/login", bad).StatusCode)
	require.Equal(t, http.StatusOK, postJSON(t, c, ts.URL+"/api/auth/login", creds).StatusCode)

	resp := get(t, c, ts.URL+"/api/auth/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
	assert.Equal(t, "ann@acme.io", u.Email)
	assert.NotEmpty(t, u.ID)

	require.Equal(t, http.StatusOK, postJSON(t, c, ts.URL+"/api/auth/logout", nil).StatusCode)
	require.Equal(t, http.StatusUnauthorized, get(t, c, ts.URL+"/api/auth/me").StatusCode)
}

func TestListLeads_PagingAndFilters(t *testing.T) {
	s := New()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	jar, _ := cookiejar.New(nil)
	c := &http.Client{Jar: jar}

	for i := 0; i < 5; i++ {
		company := "Globex"
		if i%2 == 0 {
			company = "Acme"
		}
		s.AddLead(models.LeadInput{FirstName: "F", LastName: "L", Email: string(rune('a'+i)) + "@x.io", Company: company})
	}

	creds := models.Credentials{Email: "u@x.io", Password: "p"}
	postJSON(t, c, ts.URL+"/api/auth/register", creds)
	postJSON(t, c, ts.URL+"/api/auth/login", creds)

	resp := get(t, c, ts.URL+"/leads?page=2&limit=2")
	var page models.LeadPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, models.LeadID("3"), page.Data[0].ID)

	resp = get(t, c, ts.URL+"/leads?page=1&limit=20&company_contains=acm")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, 3, page.Total)

	assert.Len(t, s.LeadQueries(), 2)
}

func TestLeads_RequireSession(t *testing.T) {
	ts, c := newClient(t)
	assert.Equal(t, http.StatusUnauthorized, get(t, c, ts.URL+"/leads").StatusCode)
}

func TestRevokeSessions(t *testing.T) {
	s := New()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	jar, _ := cookiejar.New(nil)
	c := &http.Client{Jar: jar}

	creds := models.Credentials{Email: "u@x.io", Password: "p"}
	postJSON(t, c, ts.URL+"/api/auth/register", creds)
	postJSON(t, c, ts.URL+"/api/auth/login", creds)
	require.Equal(t, http.StatusOK, get(t, c, ts.URL+"/leads").StatusCode)

	s.RevokeSessions()
	assert.Equal(t, http.StatusUnauthorized, get(t, c, ts.URL+"/leads").StatusCode)
}

func TestFailWith(t *testing.T) {
	s := New()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	s.FailWith(http.MethodPost, "/api/auth/logout", http.StatusInternalServerError, "boom")
	assert.Equal(t, http.StatusInternalServerError, postJSON(t, http.DefaultClient, ts.URL+"/api/auth/logout", nil).StatusCode)

	s.Reset()
	assert.Equal(t, http.StatusOK, postJSON(t, http.DefaultClient, ts.URL+"/api/auth/logout", nil).StatusCode)
}
