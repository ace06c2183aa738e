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

// Stock is the authoritative on-hand quantity per SKU.
//
// Invariant: OnHand never goes negative; every mutation stamps LastUpdated and
// appends a StockMovement row in the same transaction.
type Stock struct {
	Sku         string    `gorm:"primary_key;size:100" json:"sku"`
	OnHand      int       `gorm:"not null;default:0" json:"on_hand"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StockMovement is the append-only audit ledger behind Stock. Rows are never
// updated or deleted.
type StockMovement struct {
	ID            int                `gorm:"primary_key" json:"id"`
	Sku           string             `gorm:"index;size:100;not null" json:"sku"`
	Qty           int                `gorm:"not null" json:"qty"`
	ReferenceType StockReferenceType `gorm:"type:enum('PO','SALE','ADJ');not null" json:"reference_type"`
	ReferenceID   int                `json:"reference_id"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

// AddStockTx increments on-hand for sku inside the caller's transaction.
// If no stock row exists one is created at zero first, so a purchase-order
// receipt never fails for a SKU that was not stock-tracked before.
//
// NOT idempotent: calling twice applies the addition twice. The caller owns
// at-most-once semantics per receive event.
func AddStockTx(tx *gorm.DB, sku string, quantity int, referenceType StockReferenceType, referenceId int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", utils.ErrorInvalidArgument)
	}

	stock := Stock{Sku: sku, OnHand: 0, LastUpdated: time.Now()}
	// lock the row for the remainder of the transaction; concurrent receives
	// for the same SKU serialize here
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sku = ?", sku).
		FirstOrCreate(&stock).Error; err != nil {
		return err
	}

	if err := tx.Model(&Stock{}).Where("sku = ?", sku).
		Updates(map[string]interface{}{
			"on_hand":      gorm.Expr("on_hand + ?", quantity),
			"last_updated": time.Now(),
		}).Error; err != nil {
		return err
	}

	movement := StockMovement{
		Sku:           sku,
		Qty:           quantity,
		ReferenceType: referenceType,
		ReferenceID:   referenceId,
	}
	return tx.Create(&movement).Error
}

// ReduceStockTx decrements on-hand for sku inside the caller's transaction.
// Fails with RecordNotFound when the SKU has no stock row and with
// InsufficientStock when on-hand would go negative; in both cases nothing is
// mutated.
func ReduceStockTx(tx *gorm.DB, sku string, quantity int, referenceType StockReferenceType, referenceId int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", utils.ErrorInvalidArgument)
	}

	var stock Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sku = ?", sku).
		First(&stock).Error
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("%w: no stock for sku %s", utils.ErrorRecordNotFound, sku)
	}
	if err != nil {
		return err
	}

	if stock.OnHand < quantity {
		return fmt.Errorf("%w: sku %s has %d on hand, requested %d", utils.ErrorInsufficientStock, sku, stock.OnHand, quantity)
	}

	if err := tx.Model(&Stock{}).Where("sku = ?", sku).
		Updates(map[string]interface{}{
			"on_hand":      gorm.Expr("on_hand - ?", quantity),
			"last_updated": time.Now(),
		}).Error; err != nil {
		return err
	}

	movement := StockMovement{
		Sku:           sku,
		Qty:           -quantity,
		ReferenceType: referenceType,
		ReferenceID:   referenceId,
	}
	return tx.Create(&movement).Error
}

// AddStock runs AddStockTx in its own transaction.
func AddStock(ctx context.Context, sku string, quantity int) error {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := AddStockTx(tx, sku, quantity, StockReferenceAdjustment, 0); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// ReduceStock runs ReduceStockTx in its own transaction.
func ReduceStock(ctx context.Context, sku string, quantity int) error {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := ReduceStockTx(tx, sku, quantity, StockReferenceAdjustment, 0); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// GetOnHand returns the on-hand quantity for sku, or 0 when the SKU is
// unknown. The lenient read path never errors for missing rows.
func GetOnHand(ctx context.Context, sku string) (int, error) {
	db := config.GetDB()

	var stock Stock
	err := db.WithContext(ctx).Where("sku = ?", sku).First(&stock).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stock.OnHand, nil
}

// StockOverview is one SKU's on-hand position with its product name, the
// shape the customer-intent flow hands to the remote agent.
type StockOverview struct {
	Sku    string `json:"sku"`
	Name   string `json:"name"`
	OnHand int    `json:"on_hand"`
}

// ListStockOverview joins every stock row with its product name.
func ListStockOverview(ctx context.Context) ([]StockOverview, error) {
	db := config.GetDB()

	var items []StockOverview
	err := db.WithContext(ctx).Model(&Stock{}).
		Select("stocks.sku, products.product_name AS name, stocks.on_hand").
		Joins("JOIN products ON products.sku = stocks.sku").
		Order("stocks.sku").
		Scan(&items).Error
	return items, err
}

// GetStockMovements lists the audit trail for a SKU, newest first.
func GetStockMovements(ctx context.Context, sku string) ([]StockMovement, error) {
	db := config.GetDB()

	var movements []StockMovement
	err := db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("id DESC").
		Find(&movements).Error
	return movements, err
}
