package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/utils"
	"github.com/shopspring/decimal"
)

type Manufacturer struct {
	ID         int             `gorm:"primary_key" json:"id"`
	Name       string          `gorm:"size:255;not null" json:"name" binding:"required"`
	EmailId    string          `gorm:"size:255" json:"email_id"`
	DistanceKm decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"distance_km"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ManufacturerPaymentProfile carries the payment terms the sourcing service
// weighs when ranking manufacturer candidates.
type ManufacturerPaymentProfile struct {
	ID                   int         `gorm:"primary_key" json:"id"`
	ManufacturerId       int         `gorm:"uniqueIndex;not null" json:"manufacturer_id" binding:"required"`
	PreferredPaymentMode PaymentMode `gorm:"type:enum('CREDIT','CASH','UPI','BANK_TRANSFER');default:CREDIT" json:"preferred_payment_mode"`
	AdvanceRequired      *bool       `gorm:"not null;default:false" json:"advance_required"`
}

// ManufacturerProduct is a product offer (catalog row) by a manufacturer.
type ManufacturerProduct struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	ManufacturerId       int             `gorm:"index;not null" json:"manufacturer_id" binding:"required"`
	ProductName          string          `gorm:"size:255;not null" json:"product_name" binding:"required"`
	CostPrice            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	MinimumOrderQuantity int             `gorm:"default:0" json:"minimum_order_quantity"`
}

type ManufacturerRating struct {
	ID             int       `gorm:"primary_key" json:"id"`
	ManufacturerId int       `gorm:"index;not null" json:"manufacturer_id" binding:"required"`
	Rating         int       `gorm:"not null" json:"rating" binding:"required"`
	Comment        string    `gorm:"type:text" json:"comment"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewManufacturer struct {
	Name       string          `json:"name" binding:"required"`
	EmailId    string          `json:"email_id"`
	DistanceKm decimal.Decimal `json:"distance_km"`
}

func CreateManufacturer(ctx context.Context, input *NewManufacturer) (*Manufacturer, error) {
	db := config.GetDB()

	if input.Name == "" {
		return nil, fmt.Errorf("%w: manufacturer name is required", utils.ErrorInvalidArgument)
	}

	manufacturer := Manufacturer{
		Name:       input.Name,
		EmailId:    input.EmailId,
		DistanceKm: input.DistanceKm,
	}
	if err := db.WithContext(ctx).Create(&manufacturer).Error; err != nil {
		return nil, err
	}
	return &manufacturer, nil
}

func GetManufacturer(ctx context.Context, id int) (*Manufacturer, error) {
	m, err := utils.FetchModel[Manufacturer](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: manufacturer %d", utils.ErrorRecordNotFound, id)
	}
	return m, nil
}

func ListManufacturers(ctx context.Context) ([]*Manufacturer, error) {
	return utils.FetchAllModels[Manufacturer](ctx)
}

// UpsertManufacturerPaymentProfile creates or replaces the single payment
// profile of a manufacturer.
func UpsertManufacturerPaymentProfile(ctx context.Context, input *ManufacturerPaymentProfile) (*ManufacturerPaymentProfile, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[Manufacturer](ctx, input.ManufacturerId); err != nil {
		return nil, fmt.Errorf("%w: manufacturer %d", utils.ErrorRecordNotFound, input.ManufacturerId)
	}
	if input.AdvanceRequired == nil {
		input.AdvanceRequired = utils.NewFalse()
	}

	var existing ManufacturerPaymentProfile
	err := db.WithContext(ctx).Where("manufacturer_id = ?", input.ManufacturerId).First(&existing).Error
	if err == nil {
		input.ID = existing.ID
	}
	if err := db.WithContext(ctx).Save(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

func GetManufacturerPaymentProfile(ctx context.Context, manufacturerId int) (*ManufacturerPaymentProfile, error) {
	profile, err := utils.FetchModelWhere[ManufacturerPaymentProfile](ctx, "manufacturer_id = ?", manufacturerId)
	if err != nil {
		return nil, fmt.Errorf("%w: payment profile for manufacturer %d", utils.ErrorRecordNotFound, manufacturerId)
	}
	return profile, nil
}

func CreateManufacturerProduct(ctx context.Context, input *ManufacturerProduct) (*ManufacturerProduct, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[Manufacturer](ctx, input.ManufacturerId); err != nil {
		return nil, fmt.Errorf("%w: manufacturer %d", utils.ErrorRecordNotFound, input.ManufacturerId)
	}
	if err := db.WithContext(ctx).Create(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

func ListManufacturerProducts(ctx context.Context, manufacturerId int) ([]ManufacturerProduct, error) {
	db := config.GetDB()

	var products []ManufacturerProduct
	err := db.WithContext(ctx).Where("manufacturer_id = ?", manufacturerId).Find(&products).Error
	return products, err
}

func CreateManufacturerRating(ctx context.Context, input *ManufacturerRating) (*ManufacturerRating, error) {
	db := config.GetDB()

	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be within [1,5]", utils.ErrorInvalidArgument)
	}
	if err := utils.ValidateResourceId[Manufacturer](ctx, input.ManufacturerId); err != nil {
		return nil, fmt.Errorf("%w: manufacturer %d", utils.ErrorRecordNotFound, input.ManufacturerId)
	}
	if err := db.WithContext(ctx).Create(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

// GetManufacturerAverageRating returns 0 for an unrated manufacturer.
func GetManufacturerAverageRating(ctx context.Context, manufacturerId int) (float64, error) {
	db := config.GetDB()

	var avg *float64
	err := db.WithContext(ctx).Model(&ManufacturerRating{}).
		Select("AVG(rating)").
		Where("manufacturer_id = ?", manufacturerId).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
