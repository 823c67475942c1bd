package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-workflow/internal/domain"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

func TestResolve_CaseInsensitiveSubCategory(t *testing.T) {
	table, err := NewTable([]CategoryPolicy{{
		Module:          domain.ModuleIT,
		SubCategory:     "Hardware",
		ProcessingQueue: "it-processing",
		SpecialistQueue: "it-hardware",
	}})
	require.NoError(t, err)

	pol, err := table.Resolve(domain.ModuleIT, "hardware")
	require.NoError(t, err)
	require.Equal(t, "it-hardware", pol.SpecialistQueue)

	pol, err = table.Resolve(domain.ModuleIT, "HARDWARE")
	require.NoError(t, err)
	require.Equal(t, "it-hardware", pol.SpecialistQueue)
}

func TestResolve_MissingEntry(t *testing.T) {
	table, err := NewTable(nil)
	require.NoError(t, err)

	_, err = table.Resolve(domain.ModuleIT, "hardware")
	require.True(t, apperrors.HasCode(err, apperrors.CodePolicyNotFound))
}

func TestNewTable_RejectsInvalidEntries(t *testing.T) {
	_, err := NewTable([]CategoryPolicy{{
		Module:      "LEGAL",
		SubCategory: "contracts",
	}})
	require.Error(t, err)

	_, err = NewTable([]CategoryPolicy{{
		Module:           domain.ModuleIT,
		SubCategory:      "hardware",
		RequiresApproval: true,
		ApprovalLevels:   4,
	}})
	require.Error(t, err)

	_, err = NewTable([]CategoryPolicy{{
		Module: domain.ModuleIT,
	}})
	require.Error(t, err)
}

func TestLoadFile_Defaults(t *testing.T) {
	table, err := LoadFile("")
	require.NoError(t, err)

	pol, err := table.Resolve(domain.ModuleIT, "hardware")
	require.NoError(t, err)
	require.True(t, pol.RequiresApproval)
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policies.yaml")
	data := `policies:
  - module: FINANCE
    sub_category: travel
    requires_approval: true
    approval_levels: 2
    processing_queue: fin-processing
    specialist_queue: fin-travel
    requires_confirmation: true
    processing_sla_hours: 48
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)

	pol, err := table.Resolve(domain.ModuleFinance, "travel")
	require.NoError(t, err)
	require.Equal(t, 2, pol.ApprovalLevels)
	require.Equal(t, "fin-travel", pol.SpecialistQueue)
	require.True(t, pol.RequiresConfirmation)
	require.Equal(t, 48, pol.ProcessingSLAHours)
}

func TestQueues(t *testing.T) {
	table, err := LoadFile("")
	require.NoError(t, err)
	require.NotEmpty(t, table.Queues(domain.ModuleIT))
}
