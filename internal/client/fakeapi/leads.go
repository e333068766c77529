package fakeapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/labstack/echo/v4"
)

// filterable maps the <column>_contains query keys to lead fields.
var filterable = map[string]func(models.Lead) string{
	"first_name": func(l models.Lead) string { return l.FirstName },
	"last_name":  func(l models.Lead) string { return l.LastName },
	"email":      func(l models.Lead) string { return l.Email },
	"company":    func(l models.Lead) string { return l.Company },
	"status":     func(l models.Lead) string { return string(l.Status) },
}

// AddLead stores a lead directly, assigning an id and creation time.
func (s *Server) AddLead(in models.LeadInput) models.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(in)
}

func (s *Server) insert(in models.LeadInput) models.Lead {
	if in.Status == "" {
		in.Status = models.StatusNew
	}
	l := models.Lead{
		ID:        models.LeadID(strconv.Itoa(s.nextID)),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Company:   in.Company,
		Status:    in.Status,
		Score:     in.Score,
		LeadValue: in.LeadValue,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	s.nextID++
	s.leads = append(s.leads, l)
	return l
}

// Leads returns a copy of every stored lead in creation order.
func (s *Server) Leads() []models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

func (s *Server) handleListLeads(c echo.Context) error {
	q := c.QueryParams()

	page, err := positiveInt(q.Get("page"), 1)
	if err != nil {
		return c.JSON(http.StatusBadRequest, message("page must be a positive integer"))
	}
	limit, err := positiveInt(q.Get("limit"), 20)
	if err != nil {
		return c.JSON(http.StatusBadRequest, message("limit must be a positive integer"))
	}

	s.mu.Lock()
	s.queries = append(s.queries, q)
	matched := make([]models.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if matches(l, q) {
			matched = append(matched, l)
		}
	}
	s.mu.Unlock()

	from := (page - 1) * limit
	to := from + limit
	if from > len(matched) {
		from = len(matched)
	}
	if to > len(matched) {
		to = len(matched)
	}

	return c.JSON(http.StatusOK, models.LeadPage{Data: matched[from:to], Total: len(matched)})
}

func matches(l models.Lead, q map[string][]string) bool {
	for key, values := range q {
		col, ok := strings.CutSuffix(key, "_contains")
		if !ok || len(values) == 0 {
			continue
		}
		field, ok := filterable[col]
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(field(l)), strings.ToLower(values[0])) {
			return false
		}
	}
	return true
}

func positiveInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

func validate(in models.LeadInput) string {
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return "First name is required"
	case strings.TrimSpace(in.LastName) == "":
		return "Last name is required"
	case strings.TrimSpace(in.Email) == "":
		return "Email is required"
	case in.Status != "" && !in.Status.Valid():
		return "Invalid status"
	case in.Score != nil && (*in.Score < 0 || *in.Score > 100):
		return "Score must be between 0 and 100"
	}
	return ""
}

func (s *Server) handleCreateLead(c echo.Context) error {
	var in models.LeadInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid request body"))
	}
	if msg := validate(in); msg != "" {
		return c.JSON(http.StatusBadRequest, message(msg))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.leads {
		if strings.EqualFold(l.Email, in.Email) {
			return c.JSON(http.StatusConflict, message("A lead with this email already exists"))
		}
	}
	return c.JSON(http.StatusCreated, s.insert(in))
}

func (s *Server) handleUpdateLead(c echo.Context) error {
	var in models.LeadInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid request body"))
	}
	if msg := validate(in); msg != "" {
		return c.JSON(http.StatusBadRequest, message(msg))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, message("Lead not found"))
	}
	l := &s.leads[i]
	l.FirstName, l.LastName, l.Email, l.Company = in.FirstName, in.LastName, in.Email, in.Company
	if in.Status != "" {
		l.Status = in.Status
	}
	l.Score, l.LeadValue = in.Score, in.LeadValue

	return c.JSON(http.StatusOK, *l)
}

func (s *Server) handleDeleteLead(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, message("Lead not found"))
	}
	s.leads = append(s.leads[:i], s.leads[i+1:]...)
	return c.JSON(http.StatusOK, message("Lead deleted"))
}

func (s *Server) indexOf(id string) int {
	for i, l := range s.leads {
		if string(l.ID) == id {
			return i
		}
	}
	return -1
}
