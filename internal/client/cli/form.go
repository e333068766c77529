package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
)

// promptForm walks the lead fields, showing the current value of each.
// Validation is left to models.LeadForm.Input.
func promptForm(reader *bufio.Reader, w io.Writer, form models.LeadForm) (models.LeadForm, error) {
	statuses := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		statuses[i] = string(s)
	}

	fields := []struct {
		label string
		value *string
	}{
		{"First name", &form.FirstName},
		{"Last name", &form.LastName},
		{"Email", &form.Email},
		{"Company", &form.Company},
		{fmt.Sprintf("Status (%s)", strings.Join(statuses, "/")), &form.Status},
		{"Score (0-100)", &form.Score},
		{"Lead value", &form.LeadValue},
	}

	fmt.Fprintln(w, "Press Enter to keep a value, '-' to clear it.")
	for _, f := range fields {
		v, err := GetWithDefault(reader, f.label, *f.value, w)
		if err != nil {
			return models.LeadForm{}, err
		}
		*f.value = v
	}
	return form, nil
}
