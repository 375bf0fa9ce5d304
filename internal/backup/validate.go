package backup

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError collects every structural problem found in a backup
// document so a user sees the full list at once instead of fixing one
// problem per attempt.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid backup: " + strings.Join(e.Problems, "; ")
}

// envelope mirrors just enough of the container to validate it. Data is
// kept as a raw map so missing keys are distinguishable from empty ones.
type envelope struct {
	App *struct {
		Name string `json:"name"`
	} `json:"app"`
	Backup *struct {
		Version string `json:"version"`
		Format  string `json:"format"`
	} `json:"backup"`
	Data map[string]json.RawMessage `json:"data"`
}

var requiredDataKeys = []string{"trips", "mileage", "equipment", "expenses", "settings"}

// IsContainer reports whether the document presents itself as a
// versioned backup container rather than a flat legacy export.
// Containers are held to Validate before import; flat exports go
// straight to the lenient decoder.
func IsContainer(raw []byte) bool {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false
	}
	return env.Backup != nil
}

// Validate checks the container structure of a raw backup document.
// The returned error, if any, is a *ValidationError listing every
// problem found.
func Validate(raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &ValidationError{Problems: []string{"document is not a backup object"}}
	}

	var problems []string

	version := ""
	if env.Backup != nil {
		version = env.Backup.Version
	}
	if version == "" {
		problems = append(problems, "backup version missing")
	}
	if version != Version {
		problems = append(problems, fmt.Sprintf("incompatible backup version: %s (want %s)", version, Version))
	}
	if env.Backup == nil || env.Backup.Format != Format {
		format := ""
		if env.Backup != nil {
			format = env.Backup.Format
		}
		problems = append(problems, fmt.Sprintf("invalid backup format: %q", format))
	}
	if env.App == nil || env.App.Name == "" {
		problems = append(problems, "app information missing")
	}
	if env.Data == nil {
		problems = append(problems, "backup contains no data")
	} else {
		for _, key := range requiredDataKeys {
			if _, ok := env.Data[key]; !ok {
				problems = append(problems, "required field missing: "+key)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Parse decodes and validates a backup document. A malformed JSON body
// is a parse error; a well-formed document that fails validation is
// returned together with the *ValidationError so callers can still
// inspect it.
func Parse(raw []byte) (*Backup, error) {
	var b Backup
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if err := Validate(raw); err != nil {
		return &b, err
	}
	return &b, nil
}
