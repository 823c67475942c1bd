package policy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/request-workflow/internal/domain"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// CategoryPolicy is the static routing/approval rule for one (module,
// sub-category) pair.
type CategoryPolicy struct {
	Module               domain.Module `yaml:"module"`
	SubCategory          string        `yaml:"sub_category"`
	RequiresApproval     bool          `yaml:"requires_approval"`
	ApprovalLevels       int           `yaml:"approval_levels"`
	ProcessingQueue      string        `yaml:"processing_queue"`
	SpecialistQueue      string        `yaml:"specialist_queue"`
	RequiresConfirmation bool          `yaml:"requires_confirmation"`
	ApprovalSLAHours     int           `yaml:"approval_sla_hours"`
	ProcessingSLAHours   int           `yaml:"processing_sla_hours"`
	AutoCloseOnBreach    bool          `yaml:"auto_close_on_breach"`
}

// Table is the read-only category policy lookup. Safe for concurrent use
// after construction.
type Table struct {
	entries map[string]CategoryPolicy
}

type tableFile struct {
	Policies []CategoryPolicy `yaml:"policies"`
}

// NewTable builds a table from explicit entries, validating each.
func NewTable(policies []CategoryPolicy) (*Table, error) {
	entries := make(map[string]CategoryPolicy, len(policies))
	for _, p := range policies {
		if err := validate(p); err != nil {
			return nil, err
		}
		entries[key(p.Module, p.SubCategory)] = p
	}
	return &Table{entries: entries}, nil
}

// LoadFile reads a YAML policy file. An empty path yields the built-in
// default table.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return NewTable(defaultPolicies)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var file tableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	return NewTable(file.Policies)
}

// Resolve returns the policy for (module, subCategory). Missing entries fail
// with PolicyNotFound; intake treats that as non-fatal and degrades to
// no-approval so a configuration gap never blocks ticket creation.
func (t *Table) Resolve(module domain.Module, subCategory string) (CategoryPolicy, error) {
	p, ok := t.entries[key(module, subCategory)]
	if !ok {
		return CategoryPolicy{}, apperrors.NewPolicyNotFound(string(module), subCategory)
	}
	return p, nil
}

// Queues lists every (processing, specialist) queue pair known for a module.
func (t *Table) Queues(module domain.Module) []domain.Route {
	seen := map[string]bool{}
	var out []domain.Route
	for _, p := range t.entries {
		if p.Module != module || p.SpecialistQueue == "" {
			continue
		}
		k := p.ProcessingQueue + "|" + p.SpecialistQueue
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, domain.Route{ProcessingQueue: p.ProcessingQueue, SpecialistQueue: p.SpecialistQueue})
	}
	return out
}

func validate(p CategoryPolicy) error {
	if !p.Module.Valid() {
		return fmt.Errorf("policy %q: unknown module %q", p.SubCategory, p.Module)
	}
	if strings.TrimSpace(p.SubCategory) == "" {
		return fmt.Errorf("policy for module %s: empty sub_category", p.Module)
	}
	if p.ApprovalLevels < 0 || p.ApprovalLevels > 3 {
		return fmt.Errorf("policy %q: approval_levels must be 0..3, got %d", p.SubCategory, p.ApprovalLevels)
	}
	if p.RequiresApproval && p.ApprovalLevels == 0 {
		return fmt.Errorf("policy %q: requires_approval without approval_levels", p.SubCategory)
	}
	return nil
}

func key(module domain.Module, subCategory string) string {
	return string(module) + "/" + strings.ToLower(strings.TrimSpace(subCategory))
}
