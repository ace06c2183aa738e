package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/utils"
	"github.com/shopspring/decimal"
)

type Product struct {
	Sku         string          `gorm:"primary_key;size:100" json:"sku" binding:"required"`
	ProductName string          `gorm:"size:255;not null" json:"product_name" binding:"required"`
	Category    string          `gorm:"index;size:100;not null" json:"category"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	Active      *bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Sku         string          `json:"sku" binding:"required"`
	ProductName string          `json:"product_name" binding:"required"`
	Category    string          `json:"category"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// CreateProduct stores the product and its zero-quantity stock row as one
// atomic unit, so the ledger can track the SKU from day one.
func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	if input.Sku == "" {
		return nil, fmt.Errorf("%w: sku is required", utils.ErrorInvalidArgument)
	}
	if err := utils.ValidateUnique[Product](ctx, "sku", input.Sku); err != nil {
		return nil, err
	}

	product := Product{
		Sku:         input.Sku,
		ProductName: input.ProductName,
		Category:    input.Category,
		UnitCost:    input.UnitCost,
		Active:      utils.NewTrue(),
	}

	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&product).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	stock := Stock{Sku: input.Sku, OnHand: 0, LastUpdated: time.Now()}
	if err := tx.Create(&stock).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// invalidate cached product list
	_ = utils.RemoveRedisList[Product]()

	return &product, nil
}

func UpdateProduct(ctx context.Context, sku string, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	product, err := utils.FetchModelWhere[Product](ctx, "sku = ?", sku)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"ProductName": input.ProductName,
		"Category":    input.Category,
		"UnitCost":    input.UnitCost,
	}).Error
	if err != nil {
		return nil, err
	}

	_ = utils.RemoveRedisList[Product]()

	return product, nil
}

// DeactivateProduct soft-deletes; sales history and the stock row stay.
func DeactivateProduct(ctx context.Context, sku string) (*Product, error) {
	db := config.GetDB()

	product, err := utils.FetchModelWhere[Product](ctx, "sku = ?", sku)
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Model(product).Update("active", false).Error; err != nil {
		return nil, err
	}

	_ = utils.RemoveRedisList[Product]()

	return product, nil
}

// ListProducts reads through the redis list cache.
func ListProducts(ctx context.Context) ([]*Product, error) {
	results, err := utils.RetrieveRedisList[Product]()
	if err != nil {
		return nil, err
	}
	if results == nil {
		results, err = utils.FetchAllModels[Product](ctx)
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedisList[Product](results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func GetProductBySku(ctx context.Context, sku string) (*Product, error) {
	return utils.FetchModelWhere[Product](ctx, "sku = ?", sku)
}
