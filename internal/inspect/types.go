// Package inspect finds directories whose barrels are missing or out of date
// and can fix them.
package inspect

import "time"

// Rule names what a finding is about.
type Rule string

const (
	// RuleMissingBarrel flags a directory with several eligible source files,
	// at least one of them public, and no recognized barrel among them.
	RuleMissingBarrel Rule = "missing_barrel"
	// RuleOutdatedBarrel flags a recognized barrel whose exports no longer
	// match its directory.
	RuleOutdatedBarrel Rule = "outdated_barrel"
)

// Severity represents how serious a finding is.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is a single issue found during an inspection.
type Finding struct {
	Rule       Rule     `json:"rule" yaml:"rule"`
	Severity   Severity `json:"severity" yaml:"severity"`
	Directory  string   `json:"directory" yaml:"directory"`
	Barrel     string   `json:"barrel,omitempty" yaml:"barrel,omitempty"`
	Message    string   `json:"message" yaml:"message"`
	Suggestion string   `json:"suggestion" yaml:"suggestion"`
	CanAutoFix bool     `json:"can_auto_fix" yaml:"can_auto_fix"`
}

// Report contains the results of one inspection run.
type Report struct {
	Roots       []string      `json:"roots" yaml:"roots"`
	Directories int           `json:"directories" yaml:"directories"`
	Findings    []Finding     `json:"findings" yaml:"findings"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// HasFindings reports whether the run found anything.
func (r *Report) HasFindings() bool {
	return len(r.Findings) > 0
}

// Count returns how many findings carry rule.
func (r *Report) Count(rule Rule) int {
	n := 0
	for _, f := range r.Findings {
		if f.Rule == rule {
			n++
		}
	}
	return n
}
