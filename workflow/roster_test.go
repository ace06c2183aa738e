package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/mmdatafocus/vendex_backend/mlservice"
	"github.com/mmdatafocus/vendex_backend/models"
	"github.com/mmdatafocus/vendex_backend/workflow"
	"github.com/shopspring/decimal"
)

type fatalProvider struct{ t *testing.T }

func (p *fatalProvider) Generate(_ context.Context, _ *mlservice.RosterInput) (*mlservice.RosterDecision, error) {
	p.t.Fatalf("provider must not be called when there are no open shifts")
	return nil, nil
}

func TestGenerateRosterZeroOpenShifts(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	date := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)

	result, err := workflow.GenerateRoster(ctx, &fatalProvider{t: t}, date)
	if err != nil {
		t.Fatalf("GenerateRoster: %v", err)
	}
	if result.CoveragePercentage != 100 {
		t.Fatalf("coverage = %v, want 100", result.CoveragePercentage)
	}
	if len(result.Applied) != 0 {
		t.Fatalf("applied = %d, want 0", len(result.Applied))
	}
}

func TestGenerateRosterAppliesRuleBasedProposal(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	date := time.Date(2026, 9, 21, 0, 0, 0, 0, time.UTC)

	staff, err := models.CreateStaff(ctx, &models.NewStaff{
		Name:       "Asha",
		HourlyRate: decimal.NewFromFloat(9),
		Skills:     []string{"BILLING"},
	})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
	shift, err := models.CreateShift(ctx, &models.NewShift{
		ShiftDate:     date,
		StartTime:     "10:00",
		EndTime:       "13:00",
		RequiredSkill: "BILLING",
	})
	if err != nil {
		t.Fatalf("CreateShift: %v", err)
	}

	result, err := workflow.GenerateRoster(ctx, &workflow.RuleBasedRosterDecisionProvider{}, date)
	if err != nil {
		t.Fatalf("GenerateRoster: %v", err)
	}
	if len(result.Applied) != 1 || result.Applied[0].ShiftId != shift.ID || result.Applied[0].StaffId != staff.ID {
		t.Fatalf("applied = %+v", result.Applied)
	}
	if result.CoveragePercentage != 100 {
		t.Fatalf("coverage = %v, want 100", result.CoveragePercentage)
	}

	got, err := models.GetShift(ctx, shift.ID)
	if err != nil {
		t.Fatalf("GetShift: %v", err)
	}
	if got.Status != models.ShiftStatusAssigned || got.AssignedStaffId == nil || *got.AssignedStaffId != staff.ID {
		t.Fatalf("shift after apply = %+v", got)
	}
}

type staticProvider struct {
	decision *mlservice.RosterDecision
}

func (p *staticProvider) Generate(_ context.Context, _ *mlservice.RosterInput) (*mlservice.RosterDecision, error) {
	return p.decision, nil
}

func TestGenerateRosterSkipsConcurrentlyClaimedShift(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	date := time.Date(2026, 9, 22, 0, 0, 0, 0, time.UTC)

	rosterStaff, err := models.CreateStaff(ctx, &models.NewStaff{Name: "Roster Pick", Skills: []string{"BILLING"}})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
	manualStaff, err := models.CreateStaff(ctx, &models.NewStaff{Name: "Manual Pick", Skills: []string{"BILLING"}})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}

	claimed, err := models.CreateShift(ctx, &models.NewShift{
		ShiftDate: date, StartTime: "10:00", EndTime: "13:00", RequiredSkill: "BILLING",
	})
	if err != nil {
		t.Fatalf("CreateShift: %v", err)
	}
	open, err := models.CreateShift(ctx, &models.NewShift{
		ShiftDate: date, StartTime: "13:00", EndTime: "16:00", RequiredSkill: "BILLING",
	})
	if err != nil {
		t.Fatalf("CreateShift: %v", err)
	}

	// a provider whose proposal predates the manual claim of the first shift
	provider := &staticProvider{decision: &mlservice.RosterDecision{
		Assignments: []mlservice.ShiftAssignmentDecision{
			{ShiftId: claimed.ID, StaffId: rosterStaff.ID, Confidence: 0.6},
			{ShiftId: open.ID, StaffId: rosterStaff.ID, Confidence: 0.6},
		},
		CoveragePercentage: 100,
	}}

	if _, err := models.ManuallyAssignStaff(ctx, claimed.ID, manualStaff.ID); err != nil {
		t.Fatalf("ManuallyAssignStaff: %v", err)
	}

	result, err := workflow.GenerateRoster(ctx, provider, date)
	if err != nil {
		t.Fatalf("GenerateRoster: %v", err)
	}

	// The static provider still proposes both shifts; the apply pass must
	// skip the one claimed under its feet and keep the other.
	if len(result.Applied) != 1 || result.Applied[0].ShiftId != open.ID {
		t.Fatalf("applied = %+v, want only shift %d", result.Applied, open.ID)
	}

	kept, err := models.GetShift(ctx, claimed.ID)
	if err != nil {
		t.Fatalf("GetShift: %v", err)
	}
	if kept.AssignedStaffId == nil || *kept.AssignedStaffId != manualStaff.ID {
		t.Fatalf("claimed shift overwritten: %+v", kept)
	}
}
