// Package forms provides huh-based forms used before a run starts and for
// confirmations.
package forms

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// RunFormResult holds the values edited in the run form. Numeric fields are
// kept as text because huh inputs bind strings.
type RunFormResult struct {
	Directory  string
	Extensions string
	MinLength  string
	MaxLength  string
	Serve      bool
}

// RunValues is the parsed form.
type RunValues struct {
	Directory  string
	Extensions []string
	MinLength  int
	MaxLength  int
	Serve      bool
}

// NewRunFormResult pre-fills the form with the current settings.
func NewRunFormResult(v RunValues) *RunFormResult {
	return &RunFormResult{
		Directory:  v.Directory,
		Extensions: strings.Join(v.Extensions, " "),
		MinLength:  strconv.Itoa(v.MinLength),
		MaxLength:  strconv.Itoa(v.MaxLength),
		Serve:      v.Serve,
	}
}

// Values parses and checks the form content.
func (r *RunFormResult) Values() (RunValues, error) {
	v := RunValues{
		Directory:  strings.TrimSpace(r.Directory),
		Extensions: SplitExtensions(r.Extensions),
		Serve:      r.Serve,
	}
	if err := ValidateDirectory(v.Directory); err != nil {
		return RunValues{}, err
	}
	if len(v.Extensions) == 0 {
		return RunValues{}, fmt.Errorf("at least one extension is required")
	}
	var err error
	if v.MinLength, err = parseSeconds(r.MinLength); err != nil {
		return RunValues{}, fmt.Errorf("min length: %w", err)
	}
	if v.MaxLength, err = parseSeconds(r.MaxLength); err != nil {
		return RunValues{}, fmt.Errorf("max length: %w", err)
	}
	if v.MaxLength < v.MinLength {
		return RunValues{}, fmt.Errorf("max length (%d) is below min length (%d)", v.MaxLength, v.MinLength)
	}
	return v, nil
}

// SplitExtensions splits on spaces and commas and drops empty entries.
func SplitExtensions(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ValidateDirectory requires s to be an existing directory.
func ValidateDirectory(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("directory is required")
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("directory not found: %s", s)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", s)
	}
	return nil
}

func parseSeconds(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("must be a whole number of seconds")
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1 second")
	}
	return n, nil
}

func validateSeconds(s string) error {
	_, err := parseSeconds(s)
	return err
}

// NewRunForm creates the form shown by `run --interactive`. The result
// pointer is bound to the fields and is populated on submit.
func NewRunForm(result *RunFormResult) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("New clip"),

			huh.NewInput().
				Title("Video directory").
				Description("Searched recursively").
				Value(&result.Directory).
				Validate(ValidateDirectory),

			huh.NewInput().
				Title("Extensions").
				Description("Space or comma separated suffixes").
				Value(&result.Extensions).
				Validate(func(s string) error {
					if len(SplitExtensions(s)) == 0 {
						return fmt.Errorf("at least one extension is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Min length").
				Description("Seconds").
				Value(&result.MinLength).
				Validate(validateSeconds),

			huh.NewInput().
				Title("Max length").
				Description("Seconds").
				Value(&result.MaxLength).
				Validate(validateSeconds),

			huh.NewConfirm().
				Title("Stream the clip?").
				Affirmative("Yes").
				Negative("No, just cut it").
				Value(&result.Serve),
		),
	).WithTheme(Theme())
}

// NewConfirmForm creates a yes/no form bound to confirmed.
func NewConfirmForm(title, description string, confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(confirmed),
		),
	).WithTheme(Theme())
}
