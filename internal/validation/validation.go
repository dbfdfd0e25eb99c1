// Package validation provides the required-field checks applied to workspace
// profiles and the path checks applied to workspace roots and scaffold files.
package validation

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauern/wsprofile/internal/model"
)

// Error represents a validation failure with context.
type Error struct {
	// Field is the name of the field or component that failed validation
	Field string
	// Message describes the validation failure
	Message string
	// Err is the underlying error (if any)
	Err error
}

// Error returns a formatted validation error message.
func (ve *Error) Error() string {
	if ve.Err != nil {
		return fmt.Sprintf("validation failed for %q: %s: %v", ve.Field, ve.Message, ve.Err)
	}
	return fmt.Sprintf("validation failed for %q: %s", ve.Field, ve.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (ve *Error) Unwrap() error {
	return ve.Err
}

// Errors collects multiple validation errors.
type Errors []error

// Error returns a formatted error message for all validation failures.
func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors:\n- %s", len(ve), errors.Join(ve...))
}

// Unwrap exposes the collected errors to errors.Is/As.
func (ve Errors) Unwrap() []error {
	return ve
}

// Result contains the outcome of a validation check.
type Result struct {
	// Valid indicates whether all validations passed
	Valid bool
	// Warnings contains non-fatal validation issues
	Warnings []string
	// Errors contains validation failures that prevent the operation
	Errors []error
}

// AddError adds an error to the validation result.
func (r *Result) AddError(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// AddWarning adds a warning to the validation result.
func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns the combined validation error message.
func (r *Result) Error() error {
	if !r.HasErrors() {
		return nil
	}
	if len(r.Errors) == 1 {
		return r.Errors[0]
	}
	return Errors(r.Errors)
}

// Summary returns a human-readable summary of the validation result.
func (r *Result) Summary() string {
	if r.Valid && len(r.Warnings) == 0 {
		return "All validations passed"
	}
	var msg string
	if r.Valid {
		msg = "Validation passed with warnings"
	} else {
		msg = "Validation failed"
	}
	if len(r.Warnings) > 0 {
		msg += fmt.Sprintf(" (%d warning(s))", len(r.Warnings))
	}
	return msg
}

// ValidateProfile checks the fields a profile must carry before it can be
// saved. The id is checked after normalization so "!!!" counts as missing.
// Extension entries without an id are reported as warnings; they are skipped
// when the profile is applied.
func ValidateProfile(p model.WorkspaceProfile) *Result {
	result := &Result{Valid: true}

	if strings.TrimSpace(p.Name) == "" {
		result.AddError(&Error{Field: "name", Message: "profile name is required"})
	}
	if model.ResolveID(p.ID, p.Name) == "" {
		result.AddError(&Error{Field: "id", Message: "profile id is required"})
	}

	for i, ext := range p.RecommendedExtensions {
		if strings.TrimSpace(ext.ID) == "" {
			result.AddWarning(fmt.Sprintf("recommended extension #%d has no id and will be ignored", i+1))
		}
	}

	return result
}

// ValidateWorkspaceRoot checks that root names an existing directory.
func ValidateWorkspaceRoot(root string) error {
	if root == "" {
		return &Error{
			Field:   "workspace",
			Message: "no workspace folder is open",
		}
	}

	absPath, err := filepath.Abs(root)
	if err != nil {
		return &Error{
			Field:   "workspace",
			Message: "cannot convert to absolute path",
			Err:     err,
		}
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Error{
				Field:   "workspace",
				Message: fmt.Sprintf("workspace folder does not exist: %s", absPath),
				Err:     err,
			}
		}
		return &Error{
			Field:   "workspace",
			Message: fmt.Sprintf("cannot access workspace folder: %s", absPath),
			Err:     err,
		}
	}

	if !info.IsDir() {
		return &Error{
			Field:   "workspace",
			Message: fmt.Sprintf("workspace path is not a directory: %s", absPath),
		}
	}

	return nil
}

// ValidateRelativeFile checks that a scaffold file path stays inside the
// workspace it is written to.
func ValidateRelativeFile(rel string) error {
	if strings.TrimSpace(rel) == "" {
		return &Error{Field: "files.path", Message: "file path is required"}
	}
	slashed := filepath.ToSlash(rel)
	if path.IsAbs(slashed) || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return &Error{Field: "files.path", Message: fmt.Sprintf("file path must be relative: %s", rel)}
	}
	clean := path.Clean(slashed)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return &Error{Field: "files.path", Message: fmt.Sprintf("file path escapes the workspace: %s", rel)}
	}
	return nil
}
