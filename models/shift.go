package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Shift invariant: AssignedStaffId is set iff Status != OPEN on the assignment
// path. Shifts are never auto-deleted.
type Shift struct {
	ID              int         `gorm:"primary_key" json:"id"`
	ShiftDate       time.Time   `gorm:"index;type:date;not null" json:"shift_date" binding:"required"`
	StartTime       string      `gorm:"size:5;not null" json:"start_time"`
	EndTime         string      `gorm:"size:5;not null" json:"end_time"`
	RequiredSkill   string      `gorm:"size:100;not null" json:"required_skill" binding:"required"`
	Status          ShiftStatus `gorm:"type:enum('OPEN','ASSIGNED','OFFERED','COMPLETED');default:OPEN" json:"status"`
	AssignedStaffId *int        `gorm:"index" json:"assigned_staff_id"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewShift struct {
	ShiftDate     time.Time `json:"shift_date" binding:"required"`
	StartTime     string    `json:"start_time" binding:"required"`
	EndTime       string    `json:"end_time" binding:"required"`
	RequiredSkill string    `json:"required_skill" binding:"required"`
}

// defaultShiftTemplate is the store's standard operating day.
var defaultShiftTemplate = []NewShift{
	{StartTime: "10:00", EndTime: "13:00", RequiredSkill: "BILLING"},
	{StartTime: "13:00", EndTime: "16:00", RequiredSkill: "BILLING"},
	{StartTime: "16:00", EndTime: "19:00", RequiredSkill: "ORDER_PICKING"},
	{StartTime: "19:00", EndTime: "22:00", RequiredSkill: "INVENTORY_HANDLING"},
}

func CreateShift(ctx context.Context, input *NewShift) (*Shift, error) {
	db := config.GetDB()

	if !hhmmPattern.MatchString(input.StartTime) || !hhmmPattern.MatchString(input.EndTime) {
		return nil, fmt.Errorf("%w: shift times must be HH:MM", utils.ErrorInvalidArgument)
	}
	if input.StartTime >= input.EndTime {
		return nil, fmt.Errorf("%w: shift window [%s,%s) is empty", utils.ErrorInvalidArgument, input.StartTime, input.EndTime)
	}
	if input.RequiredSkill == "" {
		return nil, fmt.Errorf("%w: required skill is required", utils.ErrorInvalidArgument)
	}

	shift := Shift{
		ShiftDate:     utils.StartOfDay(input.ShiftDate),
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		RequiredSkill: input.RequiredSkill,
		Status:        ShiftStatusOpen,
	}
	if err := db.WithContext(ctx).Create(&shift).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

// GenerateDefaultShifts materialises the standard four-shift day for a date.
// A date that already has any shift fails the guard; this is an idempotency
// guard, not a merge.
func GenerateDefaultShifts(ctx context.Context, date time.Time) ([]Shift, error) {
	db := config.GetDB()
	day := utils.StartOfDay(date)

	count, err := utils.ResourceCountWhere[Shift](ctx, "shift_date = ?", day)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: shifts already exist for %s", utils.ErrorAlreadyExists, day.Format("2006-01-02"))
	}

	shifts := make([]Shift, 0, len(defaultShiftTemplate))
	for _, tpl := range defaultShiftTemplate {
		shifts = append(shifts, Shift{
			ShiftDate:     day,
			StartTime:     tpl.StartTime,
			EndTime:       tpl.EndTime,
			RequiredSkill: tpl.RequiredSkill,
			Status:        ShiftStatusOpen,
		})
	}
	if err := db.WithContext(ctx).Create(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}

func GetShift(ctx context.Context, id int) (*Shift, error) {
	shift, err := utils.FetchModel[Shift](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: shift %d", utils.ErrorRecordNotFound, id)
	}
	return shift, nil
}

func ListShiftsForDate(ctx context.Context, date time.Time) ([]Shift, error) {
	db := config.GetDB()

	var shifts []Shift
	err := db.WithContext(ctx).
		Where("shift_date = ?", utils.StartOfDay(date)).
		Order("start_time").
		Find(&shifts).Error
	return shifts, err
}

func GetOpenShiftsForDate(ctx context.Context, date time.Time) ([]Shift, error) {
	db := config.GetDB()

	var shifts []Shift
	err := db.WithContext(ctx).
		Where("shift_date = ? AND status = ?", utils.StartOfDay(date), ShiftStatusOpen).
		Order("start_time").
		Find(&shifts).Error
	return shifts, err
}

// lockShift re-reads a shift row FOR UPDATE within tx. Only a missing row
// maps to ErrorRecordNotFound; any other database failure passes through
// unwrapped so callers roll back instead of treating it as a vanished shift.
func lockShift(tx *gorm.DB, shiftId int) (*Shift, error) {
	var shift Shift
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&shift, shiftId).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: shift %d", utils.ErrorRecordNotFound, shiftId)
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// AssignStaffTx assigns a staff member to a shift inside the caller's
// transaction. The shift row is re-read under a row lock and must still be
// OPEN; a shift claimed by a concurrent writer surfaces as ErrorInvalidState
// so the roster apply loop can skip it without overwriting.
func AssignStaffTx(tx *gorm.DB, shiftId int, staffId int) (*Shift, error) {
	shift, err := lockShift(tx, shiftId)
	if err != nil {
		return nil, err
	}
	if shift.Status != ShiftStatusOpen {
		return nil, fmt.Errorf("%w: shift %d is %s, expected %s", utils.ErrorInvalidState, shiftId, shift.Status, ShiftStatusOpen)
	}

	shift.Status = ShiftStatusAssigned
	shift.AssignedStaffId = &staffId
	if err := tx.Save(shift).Error; err != nil {
		return nil, err
	}
	return shift, nil
}

// ManuallyAssignStaff overwrites a shift's assignment unconditionally. No
// skill or availability check happens here; the supervisor owns that call.
func ManuallyAssignStaff(ctx context.Context, shiftId int, staffId int) (*Shift, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[Staff](ctx, staffId); err != nil {
		return nil, fmt.Errorf("%w: staff %d", utils.ErrorRecordNotFound, staffId)
	}

	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	shift, err := lockShift(tx, shiftId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	shift.Status = ShiftStatusAssigned
	shift.AssignedStaffId = &staffId
	if err := tx.Save(shift).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return shift, nil
}

func CompleteShift(ctx context.Context, shiftId int) (*Shift, error) {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	shift, err := lockShift(tx, shiftId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if shift.Status != ShiftStatusAssigned {
		tx.Rollback()
		return nil, fmt.Errorf("%w: shift %d is %s, expected %s", utils.ErrorInvalidState, shiftId, shift.Status, ShiftStatusAssigned)
	}

	shift.Status = ShiftStatusCompleted
	if err := tx.Save(shift).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return shift, nil
}
