package models

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type Staff struct {
	ID         int             `gorm:"primary_key" json:"id"`
	Name       string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Role       string          `gorm:"size:100" json:"role"`
	HourlyRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"hourly_rate"`
	Active     *bool           `gorm:"not null;default:true" json:"active"`
	Skills     []StaffSkill    `gorm:"foreignKey:StaffId" json:"skills"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type StaffSkill struct {
	ID      int    `gorm:"primary_key" json:"id"`
	StaffId int    `gorm:"index;not null" json:"staff_id"`
	Skill   string `gorm:"size:100;not null" json:"skill"`
}

// HasSkill reports whether the staff member's skill set contains skill.
func (s *Staff) HasSkill(skill string) bool {
	for _, owned := range s.Skills {
		if owned.Skill == skill {
			return true
		}
	}
	return false
}

// StaffAvailability is a recurring weekly window during which a staff member
// can be rostered. Read-only input to roster generation; times are "HH:MM".
type StaffAvailability struct {
	ID        int    `gorm:"primary_key" json:"id"`
	StaffId   int    `gorm:"index;not null" json:"staff_id" binding:"required"`
	DayOfWeek string `gorm:"size:10;not null" json:"day_of_week" binding:"required"`
	StartTime string `gorm:"size:5;not null" json:"start_time" binding:"required"`
	EndTime   string `gorm:"size:5;not null" json:"end_time" binding:"required"`
}

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type NewStaff struct {
	Name       string          `json:"name" binding:"required"`
	Role       string          `json:"role"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Skills     []string        `json:"skills"`
}

func CreateStaff(ctx context.Context, input *NewStaff) (*Staff, error) {
	db := config.GetDB()

	if input.Name == "" {
		return nil, fmt.Errorf("%w: staff name is required", utils.ErrorInvalidArgument)
	}

	staff := Staff{
		Name:       input.Name,
		Role:       input.Role,
		HourlyRate: input.HourlyRate,
		Active:     utils.NewTrue(),
	}
	for _, skill := range utils.UniqueSlice(input.Skills) {
		staff.Skills = append(staff.Skills, StaffSkill{Skill: skill})
	}

	if err := db.WithContext(ctx).Create(&staff).Error; err != nil {
		return nil, err
	}

	_ = utils.RemoveRedisList[Staff]()
	return &staff, nil
}

// GetStaff reads through the per-staff redis cache; deactivation invalidates.
func GetStaff(ctx context.Context, id int) (*Staff, error) {
	if cached, err := utils.RetrieveRedis[Staff](id); err == nil && cached != nil {
		return cached, nil
	}
	staff, err := utils.FetchModel[Staff](ctx, id, "Skills")
	if err != nil {
		return nil, fmt.Errorf("%w: staff %d", utils.ErrorRecordNotFound, id)
	}
	_ = utils.StoreRedis[Staff](staff, id)
	return staff, nil
}

// ListStaff reads through the redis list cache.
func ListStaff(ctx context.Context) ([]*Staff, error) {
	results, err := utils.RetrieveRedisList[Staff]()
	if err != nil {
		return nil, err
	}
	if results == nil {
		results, err = utils.FetchAllModels[Staff](ctx, "Skills")
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedisList[Staff](results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ListActiveStaff bypasses the cache; roster generation must not read a
// stale notion of who is employable. Staff-list order is id order.
func ListActiveStaff(ctx context.Context) ([]Staff, error) {
	db := config.GetDB()

	var staff []Staff
	err := db.WithContext(ctx).Preload("Skills").
		Where("active = ?", true).
		Order("id").
		Find(&staff).Error
	return staff, err
}

func DeactivateStaff(ctx context.Context, id int) (*Staff, error) {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var staff Staff
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&staff, id).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: staff %d", utils.ErrorRecordNotFound, id)
	}

	staff.Active = utils.NewFalse()
	if err := tx.Omit(clause.Associations).Save(&staff).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	_ = utils.RemoveRedisList[Staff]()
	_ = utils.RemoveRedisItem[Staff](id)
	return &staff, nil
}

func CreateStaffAvailability(ctx context.Context, input *StaffAvailability) (*StaffAvailability, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[Staff](ctx, input.StaffId); err != nil {
		return nil, fmt.Errorf("%w: staff %d", utils.ErrorRecordNotFound, input.StaffId)
	}
	if !hhmmPattern.MatchString(input.StartTime) || !hhmmPattern.MatchString(input.EndTime) {
		return nil, fmt.Errorf("%w: availability times must be HH:MM", utils.ErrorInvalidArgument)
	}
	if input.StartTime >= input.EndTime {
		return nil, fmt.Errorf("%w: availability window [%s,%s) is empty", utils.ErrorInvalidArgument, input.StartTime, input.EndTime)
	}

	if err := db.WithContext(ctx).Create(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

func ListStaffAvailabilities(ctx context.Context, staffId int) ([]StaffAvailability, error) {
	db := config.GetDB()

	var windows []StaffAvailability
	err := db.WithContext(ctx).Where("staff_id = ?", staffId).Find(&windows).Error
	return windows, err
}

// ListAllAvailabilities returns every availability window grouped by staff id;
// the roster engine feeds these to the decision provider verbatim.
func ListAllAvailabilities(ctx context.Context) (map[int][]StaffAvailability, error) {
	db := config.GetDB()

	var windows []StaffAvailability
	if err := db.WithContext(ctx).Find(&windows).Error; err != nil {
		return nil, err
	}

	byStaff := make(map[int][]StaffAvailability)
	for _, w := range windows {
		byStaff[w.StaffId] = append(byStaff[w.StaffId], w)
	}
	return byStaff, nil
}
