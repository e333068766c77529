// Package timex holds small time helpers shared by the config loaders.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidDuration = errors.New("invalid duration")

// Duration is a time.Duration that decodes from either a Go duration string
// ("3s", "1m30s") or an integer number of nanoseconds. It is used by the
// JSON and YAML config DTOs.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var v any
	if err := value.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case int:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDuration, value)
		}
		d.Duration = parsed
	case nil:
		d.Duration = 0
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidDuration, v)
	}
	return nil
}
