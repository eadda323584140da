// Package consult handles inbound consultation requests from the website.
package consult

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"evolve-engine/internal/config"
	"evolve-engine/internal/store"

	"go.uber.org/zap"
)

// RequiredFields is the order missing fields are reported in.
var RequiredFields = []string{"name", "email", "company", "details"}

type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Details string `json:"details"`
}

// UnmarshalJSON accepts scalar values for every field, as the web form's
// handler does. Strings are taken as is; numbers keep their JSON text;
// true becomes "true". null, false and zero read as empty, so they are
// reported missing. Objects and arrays are rejected.
func (r *Request) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name    json.RawMessage `json:"name"`
		Email   json.RawMessage `json:"email"`
		Company json.RawMessage `json:"company"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"name", raw.Name, &r.Name},
		{"email", raw.Email, &r.Email},
		{"company", raw.Company, &r.Company},
		{"details", raw.Details, &r.Details},
	}
	for _, f := range fields {
		v, err := scalarText(f.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return nil
}

func scalarText(raw json.RawMessage) (string, error) {
	var v any
	if len(raw) == 0 {
		return "", nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		if x {
			return "true", nil
		}
		return "", nil
	case json.Number:
		if f, err := x.Float64(); err == nil && f == 0 {
			return "", nil
		}
		return x.String(), nil
	default:
		return "", fmt.Errorf("unsupported value %s", raw)
	}
}

// Missing lists the required fields that are empty or blank.
func (r Request) Missing() []string {
	vals := map[string]string{
		"name":    r.Name,
		"email":   r.Email,
		"company": r.Company,
		"details": r.Details,
	}
	missing := []string{}
	for _, f := range RequiredFields {
		if strings.TrimSpace(vals[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Intake accepts a validated request.
type Intake interface {
	Submit(ctx context.Context, req Request) error
}

// New returns the intake selected by cfg.Backend. db is only used by the
// store backend.
func New(cfg config.Server, db *store.DB, log *zap.Logger) (Intake, error) {
	switch cfg.Backend {
	case config.BackendNotify:
		return NewNotify(cfg, nil, log), nil
	case config.BackendStore:
		if db == nil {
			return nil, fmt.Errorf("consult: store backend needs a database")
		}
		return &StoreIntake{DB: db.Pool}, nil
	default:
		return nil, fmt.Errorf("consult: unknown backend %q", cfg.Backend)
	}
}
