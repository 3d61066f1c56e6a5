package field

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid board: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "board validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// validTokenKinds are the kinds a board config may name.
var validTokenKinds = map[string]bool{
	string(KindNumbered):        true,
	string(KindAccelerator):     true,
	string(KindDarkAccelerator): true,
}

// ValidateBoardConfig performs comprehensive validation of a BoardConfig
func ValidateBoardConfig(cfg BoardConfig) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("board name is required")
	}

	if len(cfg.Tokens) == 0 {
		err.Add("board requires at least one token")
	}

	for i, tc := range cfg.Tokens {
		if !validTokenKinds[tc.Kind] {
			err.Add(fmt.Sprintf("token %d has unknown kind %q", i, tc.Kind))
			continue
		}
		if tc.Kind == string(KindNumbered) && tc.Number < 1 {
			err.Add(fmt.Sprintf("token %d is numbered but has number %d < 1", i, tc.Number))
		}
		if tc.Kind != string(KindNumbered) && tc.Number != 0 {
			err.Add(fmt.Sprintf("token %d is %q and must not carry a number", i, tc.Kind))
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}
