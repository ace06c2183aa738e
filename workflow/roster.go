package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/mlservice"
	"github.com/mmdatafocus/vendex_backend/models"
	"github.com/mmdatafocus/vendex_backend/utils"
)

type RosterResult struct {
	Date               string                                `json:"date"`
	Applied            []mlservice.ShiftAssignmentDecision   `json:"applied"`
	CoveragePercentage float64                               `json:"coverage_percentage"`
	OvertimeRisk       bool                                  `json:"overtime_risk"`
}

// GenerateRoster proposes and applies assignments for every OPEN shift on a
// date. The proposal comes from the decision provider; applying it re-checks
// each shift is still OPEN under a row lock — a shift claimed meanwhile is
// skipped, never overwritten. Coverage and overtime figures are the
// proposal's; they are not recomputed after skips, the Applied list is the
// authoritative record of what changed.
func GenerateRoster(ctx context.Context, provider RosterDecisionProvider, date time.Time) (*RosterResult, error) {
	logger := config.GetLogger()
	day := utils.StartOfDay(date)
	dayKey := day.Format("2006-01-02")

	lock, err := utils.ObtainLock(ctx, "rosterGeneration", dayKey, "roster.go", "GenerateRoster")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseLock(ctx, lock)

	shifts, err := models.GetOpenShiftsForDate(ctx, day)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return &RosterResult{
			Date:               dayKey,
			Applied:            []mlservice.ShiftAssignmentDecision{},
			CoveragePercentage: 100,
		}, nil
	}

	input, err := buildRosterInput(ctx, dayKey, shifts)
	if err != nil {
		return nil, err
	}

	proposal, err := provider.Generate(ctx, input)
	if err != nil {
		return nil, err
	}

	applied, err := applyAssignments(ctx, proposal.Assignments)
	if err != nil {
		return nil, err
	}

	logger.WithField("date", dayKey).
		WithField("proposed", len(proposal.Assignments)).
		WithField("applied", len(applied)).
		Info("roster generated")

	return &RosterResult{
		Date:               dayKey,
		Applied:            applied,
		CoveragePercentage: proposal.CoveragePercentage,
		OvertimeRisk:       proposal.OvertimeRisk,
	}, nil
}

// buildRosterInput collects the decision input: open shifts plus every
// active staff member with skills, rate and weekly availability. Hours
// worked this week is not tracked and is always supplied as 0.
func buildRosterInput(ctx context.Context, dayKey string, shifts []models.Shift) (*mlservice.RosterInput, error) {
	staff, err := models.ListActiveStaff(ctx)
	if err != nil {
		return nil, err
	}
	availabilities, err := models.ListAllAvailabilities(ctx)
	if err != nil {
		return nil, err
	}

	input := &mlservice.RosterInput{Date: dayKey}
	for _, shift := range shifts {
		input.Shifts = append(input.Shifts, mlservice.ShiftInput{
			ShiftId:       shift.ID,
			StartTime:     shift.StartTime,
			EndTime:       shift.EndTime,
			RequiredSkill: shift.RequiredSkill,
		})
	}
	for _, member := range staff {
		skills := make([]string, 0, len(member.Skills))
		for _, s := range member.Skills {
			skills = append(skills, s.Skill)
		}
		slots := make([]mlservice.AvailabilitySlot, 0, len(availabilities[member.ID]))
		for _, w := range availabilities[member.ID] {
			slots = append(slots, mlservice.AvailabilitySlot{
				Day:       w.DayOfWeek,
				StartTime: w.StartTime,
				EndTime:   w.EndTime,
			})
		}
		input.Staff = append(input.Staff, mlservice.StaffInput{
			StaffId:             member.ID,
			Skills:              skills,
			HourlyRate:          member.HourlyRate.InexactFloat64(),
			HoursWorkedThisWeek: 0,
			Availability:        slots,
		})
	}
	return input, nil
}

// applyAssignments commits the accepted assignments in one transaction.
// Shifts no longer OPEN (or gone) are skipped; any other failure rolls back
// the whole pass.
func applyAssignments(ctx context.Context, assignments []mlservice.ShiftAssignmentDecision) ([]mlservice.ShiftAssignmentDecision, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	applied := make([]mlservice.ShiftAssignmentDecision, 0, len(assignments))
	for _, assignment := range assignments {
		_, err := models.AssignStaffTx(tx, assignment.ShiftId, assignment.StaffId)
		if err != nil {
			if errors.Is(err, utils.ErrorInvalidState) || errors.Is(err, utils.ErrorRecordNotFound) {
				logger.WithField("shiftId", assignment.ShiftId).WithError(err).Info("skipping shift no longer open")
				continue
			}
			tx.Rollback()
			return nil, err
		}
		applied = append(applied, assignment)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return applied, nil
}
