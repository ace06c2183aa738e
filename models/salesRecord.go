package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/utils"
)

type SalesRecord struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Sku          string    `gorm:"index;size:100;not null" json:"sku" binding:"required"`
	QuantitySold int       `gorm:"not null" json:"quantity_sold" binding:"required"`
	SaleDate     time.Time `gorm:"index;not null" json:"sale_date" binding:"required"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewSalesRecord struct {
	Sku          string    `json:"sku" binding:"required"`
	QuantitySold int       `json:"quantity_sold" binding:"required"`
	SaleDate     time.Time `json:"sale_date"`
}

// DailySalesTotal is one aggregated point of the sales time series.
type DailySalesTotal struct {
	SaleDate time.Time `json:"sale_date"`
	Total    int       `json:"total"`
}

// CreateSalesRecord records a sale and decrements stock in the same
// transaction. The decrement fails (and nothing is recorded) when the SKU has
// no stock row or on-hand would go negative.
func CreateSalesRecord(ctx context.Context, input *NewSalesRecord) (*SalesRecord, error) {
	db := config.GetDB()

	if input.QuantitySold <= 0 {
		return nil, fmt.Errorf("%w: quantity sold must be positive", utils.ErrorInvalidArgument)
	}
	count, err := utils.ResourceCountWhere[Product](ctx, "sku = ?", input.Sku)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: product %s", utils.ErrorRecordNotFound, input.Sku)
	}

	saleDate := input.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	record := SalesRecord{
		Sku:          input.Sku,
		QuantitySold: input.QuantitySold,
		SaleDate:     saleDate,
	}

	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := ReduceStockTx(tx, input.Sku, input.QuantitySold, StockReferenceSale, record.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &record, nil
}

// GetDailySalesTotals aggregates the SKU's sales of the last lookbackDays into
// a date-ordered series. Days with no sales are absent, not zero-filled.
func GetDailySalesTotals(ctx context.Context, sku string, lookbackDays int) ([]DailySalesTotal, error) {
	db := config.GetDB()

	fromDate := time.Now().AddDate(0, 0, -lookbackDays)

	var totals []DailySalesTotal
	err := db.WithContext(ctx).Model(&SalesRecord{}).
		Select("DATE(sale_date) AS sale_date, SUM(quantity_sold) AS total").
		Where("sku = ? AND sale_date > ?", sku, fromDate).
		Group("DATE(sale_date)").
		Order("sale_date").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func ListSalesRecords(ctx context.Context, sku string) ([]SalesRecord, error) {
	db := config.GetDB()

	var records []SalesRecord
	query := db.WithContext(ctx).Order("sale_date DESC")
	if sku != "" {
		query = query.Where("sku = ?", sku)
	}
	err := query.Find(&records).Error
	return records, err
}
