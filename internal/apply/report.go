package apply

import (
	"fmt"
	"strings"
)

// Status is the outcome of a single apply step.
type Status string

const (
	// StatusApplied indicates the step was written.
	StatusApplied Status = "applied"

	// StatusFailed indicates the step failed; the rest of the apply continued.
	StatusFailed Status = "failed"

	// StatusSkipped indicates there was nothing to do.
	StatusSkipped Status = "skipped"
)

// Outcome records what happened to one setting or to the recommendations file.
type Outcome struct {
	// Key is the setting key, or the file name for non-setting steps.
	Key    string
	Status Status
	Err    error
}

// Failed reports whether the step failed.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// Report is the result of applying a profile to an open workspace.
type Report struct {
	ProfileID   string
	ProfileName string
	Root        string

	// Settings holds one outcome per key setting, in profile order.
	Settings []Outcome

	// Recommendations is the outcome of the extensions.json merge.
	Recommendations Outcome

	// RecommendationIDs is the merged list written to extensions.json.
	RecommendationIDs []string

	// Backups lists the ids of backups taken before any write.
	Backups []string
}

// Applied returns the settings that were written.
func (r *Report) Applied() []Outcome {
	return r.filter(StatusApplied)
}

// Failed returns every failed step, settings first.
func (r *Report) Failed() []Outcome {
	failed := r.filter(StatusFailed)
	if r.Recommendations.Failed() {
		failed = append(failed, r.Recommendations)
	}
	return failed
}

func (r *Report) filter(status Status) []Outcome {
	var out []Outcome
	for _, o := range r.Settings {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// Warnings renders each failed step as a user-facing message.
func (r *Report) Warnings() []string {
	failed := r.Failed()
	warnings := make([]string, 0, len(failed))
	for _, o := range failed {
		if o.Key == ExtensionsFileName {
			warnings = append(warnings, fmt.Sprintf("Failed to update .vscode/%s: %v", o.Key, o.Err))
			continue
		}
		warnings = append(warnings, fmt.Sprintf("Failed to apply setting: %s. %v", o.Key, o.Err))
	}
	return warnings
}

// Success reports whether every step completed without a warning.
func (r *Report) Success() bool {
	return len(r.Failed()) == 0
}

// Summary returns a human-readable summary of the apply.
func (r *Report) Summary() string {
	var sb strings.Builder

	name := r.ProfileName
	if name == "" {
		name = r.ProfileID
	}
	sb.WriteString(fmt.Sprintf("Applied %q to %s\n", name, r.Root))
	sb.WriteString(fmt.Sprintf("  Settings applied: %d/%d\n", len(r.Applied()), len(r.Settings)))

	switch r.Recommendations.Status {
	case StatusApplied:
		sb.WriteString(fmt.Sprintf("  Recommendations:  %d\n", len(r.RecommendationIDs)))
	case StatusFailed:
		sb.WriteString("  Recommendations:  failed\n")
	default:
		sb.WriteString("  Recommendations:  unchanged\n")
	}

	if len(r.Backups) > 0 {
		sb.WriteString(fmt.Sprintf("  Backups:          %s\n", strings.Join(r.Backups, ", ")))
	}

	if warnings := r.Warnings(); len(warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range warnings {
			sb.WriteString("  - " + w + "\n")
		}
	}

	return sb.String()
}
