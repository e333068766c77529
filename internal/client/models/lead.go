package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusLost      LeadStatus = "lost"
	StatusWon       LeadStatus = "won"
)

var Statuses = []LeadStatus{StatusNew, StatusContacted, StatusQualified, StatusLost, StatusWon}

func (s LeadStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

var (
	ErrFieldRequired = errors.New("field is required")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidScore  = errors.New("score must be an integer between 0 and 100")
	ErrInvalidValue  = errors.New("lead value must be a number")
)

// Lead is a backend-owned CRM record.
type Lead struct {
	ID        LeadID     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Company   string     `json:"company"`
	Status    LeadStatus `json:"status"`
	Score     *int       `json:"score"`
	LeadValue *float64   `json:"lead_value"`
	CreatedAt time.Time  `json:"created_at"`
}

// createdAtLayouts are tried in order for string timestamps. Values without
// a zone are taken as UTC.
var createdAtLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// UnmarshalJSON accepts both created_at and createdAt for the creation time.
// The timestamp may be an RFC 3339 string, a "YYYY-MM-DD[ HH:MM:SS]" string
// or epoch milliseconds. Anything else leaves CreatedAt zero.
func (l *Lead) UnmarshalJSON(b []byte) error {
	type plain Lead
	aux := struct {
		*plain
		CreatedAt      json.RawMessage `json:"created_at"`
		CreatedAtCamel json.RawMessage `json:"createdAt"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	l.CreatedAt = parseCreatedAt(aux.CreatedAt)
	if l.CreatedAt.IsZero() {
		l.CreatedAt = parseCreatedAt(aux.CreatedAtCamel)
	}
	return nil
}

func parseCreatedAt(raw json.RawMessage) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		for _, layout := range createdAtLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return time.Time{}
	}

	var ms json.Number
	if err := json.Unmarshal(raw, &ms); err == nil {
		if n, err := ms.Int64(); err == nil {
			return time.UnixMilli(n).UTC()
		}
	}
	return time.Time{}
}

// LeadPage is one page of the GET /leads response.
type LeadPage struct {
	Data  []Lead `json:"data"`
	Total int    `json:"total"`
}

// LeadInput is the body of create and update requests.
type LeadInput struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Company   string     `json:"company"`
	Status    LeadStatus `json:"status"`
	Score     *int       `json:"score"`
	LeadValue *float64   `json:"lead_value"`
}

// LeadForm holds the raw text a user typed into the lead form.
type LeadForm struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
	Status    string
	Score     string
	LeadValue string
}

// FormFromLead prefills a form with the values of an existing lead.
func FormFromLead(l Lead) LeadForm {
	f := LeadForm{
		FirstName: l.FirstName,
		LastName:  l.LastName,
		Email:     l.Email,
		Company:   l.Company,
		Status:    string(l.Status),
	}
	if f.Status == "" {
		f.Status = string(StatusNew)
	}
	if l.Score != nil {
		f.Score = strconv.Itoa(*l.Score)
	}
	if l.LeadValue != nil {
		f.LeadValue = strconv.FormatFloat(*l.LeadValue, 'f', -1, 64)
	}
	return f
}

// Input validates the form and converts it into a request body.
func (f LeadForm) Input() (LeadInput, error) {
	in := LeadInput{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Company:   strings.TrimSpace(f.Company),
		Status:    LeadStatus(strings.ToLower(strings.TrimSpace(f.Status))),
	}

	required := []struct{ name, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
	}
	for _, r := range required {
		if r.value == "" {
			return LeadInput{}, fmt.Errorf("%s: %w", r.name, ErrFieldRequired)
		}
	}

	if in.Status == "" {
		in.Status = StatusNew
	}
	if !in.Status.Valid() {
		return LeadInput{}, fmt.Errorf("%q: %w", in.Status, ErrInvalidStatus)
	}

	if s := strings.TrimSpace(f.Score); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > 100 {
			return LeadInput{}, ErrInvalidScore
		}
		in.Score = &n
	}

	if s := strings.TrimSpace(f.LeadValue); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return LeadInput{}, ErrInvalidValue
		}
		in.LeadValue = &v
	}

	return in, nil
}
