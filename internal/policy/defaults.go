package policy

import "github.com/spec-kit/request-workflow/internal/domain"

// defaultPolicies seeds the table when no policy file is configured.
var defaultPolicies = []CategoryPolicy{
	{
		Module:               domain.ModuleIT,
		SubCategory:          "hardware",
		RequiresApproval:     true,
		ApprovalLevels:       1,
		ProcessingQueue:      "it-processing",
		SpecialistQueue:      "it-hardware",
		RequiresConfirmation: true,
		ApprovalSLAHours:     24,
		ProcessingSLAHours:   72,
		AutoCloseOnBreach:    false,
	},
	{
		Module:             domain.ModuleIT,
		SubCategory:        "software",
		RequiresApproval:   false,
		ProcessingQueue:    "it-processing",
		SpecialistQueue:    "it-software",
		ApprovalSLAHours:   24,
		ProcessingSLAHours: 48,
		AutoCloseOnBreach:  true,
	},
	{
		Module:               domain.ModuleIT,
		SubCategory:          "access",
		RequiresApproval:     true,
		ApprovalLevels:       2,
		ProcessingQueue:      "it-processing",
		SpecialistQueue:      "it-security",
		RequiresConfirmation: true,
		ApprovalSLAHours:     48,
		ProcessingSLAHours:   24,
	},
	{
		Module:             domain.ModuleFacilities,
		SubCategory:        "maintenance",
		RequiresApproval:   false,
		ProcessingQueue:    "facilities-processing",
		SpecialistQueue:    "facilities-maintenance",
		ApprovalSLAHours:   24,
		ProcessingSLAHours: 96,
		AutoCloseOnBreach:  true,
	},
	{
		Module:           domain.ModuleFacilities,
		SubCategory:      "relocation",
		RequiresApproval: true,
		ApprovalLevels:   2,
		ProcessingQueue:  "facilities-processing",
		SpecialistQueue:  "facilities-moves",
		ApprovalSLAHours: 72, ProcessingSLAHours: 120,
	},
	{
		Module:               domain.ModuleFinance,
		SubCategory:          "reimbursement",
		RequiresApproval:     true,
		ApprovalLevels:       2,
		ProcessingQueue:      "finance-processing",
		SpecialistQueue:      "finance-payables",
		RequiresConfirmation: true,
		ApprovalSLAHours:     48,
		ProcessingSLAHours:   120,
	},
	{
		Module:           domain.ModuleFinance,
		SubCategory:      "budget",
		RequiresApproval: true,
		ApprovalLevels:   3,
		ProcessingQueue:  "finance-processing",
		SpecialistQueue:  "finance-planning",
		ApprovalSLAHours: 96, ProcessingSLAHours: 168,
	},
}
