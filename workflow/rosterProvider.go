package workflow

import (
	"context"

	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/mlservice"
)

// Provenance confidences; a provenance signal only, never a scoring input.
const (
	ruleBasedConfidence      = 0.6
	remoteFallbackConfidence = 0.5
)

// RosterDecisionProvider proposes shift assignments for a roster input.
// Providers never hard-fail the roster flow; a provider that cannot decide
// returns its best effort.
type RosterDecisionProvider interface {
	Generate(ctx context.Context, input *mlservice.RosterInput) (*mlservice.RosterDecision, error)
}

// RosterRemote is the slice of the remote client the ML provider needs.
type RosterRemote interface {
	RosterDecide(ctx context.Context, input *mlservice.RosterInput) (*mlservice.RosterDecision, error)
}

// ruleBasedDecision assigns each shift the first staff member in staff-list
// order whose skill set contains the shift's required skill. Unmatched
// shifts contribute no assignment. coverage = assigned/total*100, defined as
// 100 for zero shifts.
func ruleBasedDecision(input *mlservice.RosterInput, confidence float64) *mlservice.RosterDecision {
	assignments := make([]mlservice.ShiftAssignmentDecision, 0, len(input.Shifts))

	for _, shift := range input.Shifts {
		for _, staff := range input.Staff {
			if !containsSkill(staff.Skills, shift.RequiredSkill) {
				continue
			}
			assignments = append(assignments, mlservice.ShiftAssignmentDecision{
				ShiftId:    shift.ShiftId,
				StaffId:    staff.StaffId,
				Confidence: confidence,
			})
			break
		}
	}

	coverage := 100.0
	if len(input.Shifts) > 0 {
		coverage = float64(len(assignments)) / float64(len(input.Shifts)) * 100
	}

	return &mlservice.RosterDecision{
		Assignments:        assignments,
		CoveragePercentage: coverage,
		OvertimeRisk:       false,
	}
}

func containsSkill(skills []string, skill string) bool {
	for _, s := range skills {
		if s == skill {
			return true
		}
	}
	return false
}

// RuleBasedRosterDecisionProvider is the deterministic local provider.
type RuleBasedRosterDecisionProvider struct{}

func (p *RuleBasedRosterDecisionProvider) Generate(_ context.Context, input *mlservice.RosterInput) (*mlservice.RosterDecision, error) {
	return ruleBasedDecision(input, ruleBasedConfidence), nil
}

// MLRosterDecisionProvider delegates to the remote service and falls back to
// the rule-based decision on any failure. The roster flow must never
// hard-fail because the remote collaborator is down.
type MLRosterDecisionProvider struct {
	Remote RosterRemote
}

func (p *MLRosterDecisionProvider) Generate(ctx context.Context, input *mlservice.RosterInput) (*mlservice.RosterDecision, error) {
	decision, err := p.Remote.RosterDecide(ctx, input)
	if err != nil || decision == nil {
		config.LogError(config.GetLogger(), "rosterProvider.go", "Generate", "RosterDecide fallback", input.Date, err)
		return ruleBasedDecision(input, remoteFallbackConfidence), nil
	}
	return decision, nil
}

// NewRosterDecisionProvider picks the provider by feature flag.
func NewRosterDecisionProvider(remote RosterRemote) RosterDecisionProvider {
	if config.MLRosterEnabled() && remote != nil {
		return &MLRosterDecisionProvider{Remote: remote}
	}
	return &RuleBasedRosterDecisionProvider{}
}
