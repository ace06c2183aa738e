package models_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/vendex_backend/models"
	"github.com/mmdatafocus/vendex_backend/utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGenerateDefaultShiftsGuard(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	shifts, err := models.GenerateDefaultShifts(ctx, date)
	if err != nil {
		t.Fatalf("GenerateDefaultShifts: %v", err)
	}
	if len(shifts) != 4 {
		t.Fatalf("created %d shifts, want 4", len(shifts))
	}
	for _, s := range shifts {
		if s.Status != models.ShiftStatusOpen {
			t.Fatalf("shift %d status = %s, want OPEN", s.ID, s.Status)
		}
	}

	// second call is a guard failure, not a merge
	if _, err := models.GenerateDefaultShifts(ctx, date); !errors.Is(err, utils.ErrorAlreadyExists) {
		t.Fatalf("second call: err=%v, want ErrorAlreadyExists", err)
	}
	all, err := models.ListShiftsForDate(ctx, date)
	if err != nil {
		t.Fatalf("ListShiftsForDate: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("have %d shifts after duplicate call, want 4", len(all))
	}
}

func TestManualAssignmentOverwrites(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	shift, err := models.CreateShift(ctx, &models.NewShift{
		ShiftDate:     date,
		StartTime:     "10:00",
		EndTime:       "13:00",
		RequiredSkill: "BILLING",
	})
	if err != nil {
		t.Fatalf("CreateShift: %v", err)
	}
	first, err := models.CreateStaff(ctx, &models.NewStaff{Name: "First", Skills: []string{"BILLING"}})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
	second, err := models.CreateStaff(ctx, &models.NewStaff{Name: "Second", Skills: []string{"BILLING"}})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}

	assigned, err := models.ManuallyAssignStaff(ctx, shift.ID, first.ID)
	if err != nil {
		t.Fatalf("ManuallyAssignStaff: %v", err)
	}
	if assigned.Status != models.ShiftStatusAssigned || *assigned.AssignedStaffId != first.ID {
		t.Fatalf("assign: %+v", assigned)
	}

	// manual assignment overwrites unconditionally
	reassigned, err := models.ManuallyAssignStaff(ctx, shift.ID, second.ID)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if *reassigned.AssignedStaffId != second.ID {
		t.Fatalf("reassign kept staff %d", *reassigned.AssignedStaffId)
	}

	// the roster path refuses the same shift because it is no longer OPEN
	open, err := models.GetOpenShiftsForDate(ctx, date)
	if err != nil {
		t.Fatalf("GetOpenShiftsForDate: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("open shifts = %d, want 0", len(open))
	}
}

func TestCreateShiftValidation(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()

	_, err := models.CreateShift(ctx, &models.NewShift{
		ShiftDate:     time.Now(),
		StartTime:     "13:00",
		EndTime:       "10:00",
		RequiredSkill: "BILLING",
	})
	if !errors.Is(err, utils.ErrorInvalidArgument) {
		t.Fatalf("inverted window: err=%v, want ErrorInvalidArgument", err)
	}

	_, err = models.CreateShift(ctx, &models.NewShift{
		ShiftDate:     time.Now(),
		StartTime:     "25:00",
		EndTime:       "26:00",
		RequiredSkill: "BILLING",
	})
	if !errors.Is(err, utils.ErrorInvalidArgument) {
		t.Fatalf("bad time format: err=%v, want ErrorInvalidArgument", err)
	}
}

// A transaction that fails for infrastructure reasons (connection loss, lock
// wait timeout) must not look like a missing or already-claimed shift, or the
// roster apply pass would skip-and-commit instead of rolling back.
func TestAssignStaffTxSurfacesDriverErrors(t *testing.T) {
	sqlDB, err := sql.Open("mysql", "vendex:vendex@tcp(127.0.0.1:1)/vendex?timeout=250ms")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	_, err = models.AssignStaffTx(gdb.Begin(), 1, 1)
	if err == nil {
		t.Fatal("expected a connection error")
	}
	if errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("connection error reported as ErrorRecordNotFound: %v", err)
	}
	if errors.Is(err, utils.ErrorInvalidState) {
		t.Fatalf("connection error reported as ErrorInvalidState: %v", err)
	}
}
