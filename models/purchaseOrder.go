package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseOrder is a replenishment request moving through a one-way lifecycle:
//
//	PENDING_APPROVAL -> APPROVED [-> AI_DOCUMENTS_READY] -> READY_TO_SEND
//	  -> SENT_TO_MANUFACTURER -> RECEIVED
//
// Rows are mutated only through the transition functions below; timestamps are
// populated monotonically as the status advances. Deletion is allowed only
// while still PENDING_APPROVAL.
type PurchaseOrder struct {
	ID             int                 `gorm:"primary_key" json:"id"`
	Status         PurchaseOrderStatus `gorm:"type:enum('PENDING_APPROVAL','APPROVED','AI_DOCUMENTS_READY','READY_TO_SEND','SENT_TO_MANUFACTURER','RECEIVED');not null;index" json:"status"`
	Confidence     *float64            `gorm:"default:null" json:"confidence"`
	ManufacturerId *int                `gorm:"index;default:null" json:"manufacturer_id"`
	Items          []PurchaseOrderItem `json:"items"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	ApprovedAt     *time.Time          `gorm:"default:null" json:"approved_at"`
	SentAt         *time.Time          `gorm:"default:null" json:"sent_at"`
	ReceivedAt     *time.Time          `gorm:"default:null" json:"received_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	PurchaseOrderId int             `gorm:"index;not null" json:"purchase_order_id"`
	Sku             string          `gorm:"index;size:100;not null" json:"sku" binding:"required"`
	Quantity        int             `gorm:"not null" json:"quantity" binding:"required"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
}

type NewPurchaseOrderItem struct {
	Sku      string          `json:"sku" binding:"required"`
	Quantity int             `json:"quantity" binding:"required"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

func GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	po, err := utils.FetchModel[PurchaseOrder](ctx, id, "Items")
	if err != nil {
		return nil, fmt.Errorf("%w: purchase order %d", utils.ErrorRecordNotFound, id)
	}
	return po, nil
}

func ListPurchaseOrders(ctx context.Context) ([]*PurchaseOrder, error) {
	return utils.FetchAllModels[PurchaseOrder](ctx, "Items")
}

// ExistsPurchaseOrderForSku reports whether any PO in the given status carries
// an item for sku. The inventory pipeline uses this as its anti-duplication
// guard before proposing a reorder.
func ExistsPurchaseOrderForSku(ctx context.Context, sku string, status PurchaseOrderStatus) (bool, error) {
	db := config.GetDB()

	var count int64
	err := db.WithContext(ctx).Model(&PurchaseOrder{}).
		Joins("JOIN purchase_order_items ON purchase_order_items.purchase_order_id = purchase_orders.id").
		Where("purchase_order_items.sku = ? AND purchase_orders.status = ?", sku, status).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreatePurchaseOrder stores a new PO and its items as one atomic unit in
// PENDING_APPROVAL.
func CreatePurchaseOrder(ctx context.Context, items []NewPurchaseOrderItem, confidence *float64) (*PurchaseOrder, error) {
	return createPurchaseOrder(ctx, items, confidence, PurchaseOrderStatusPendingApproval)
}

// CreateApprovedPurchaseOrder is the AUTO_REORDER entry point: the PO starts
// life already APPROVED, with ApprovedAt stamped.
func CreateApprovedPurchaseOrder(ctx context.Context, items []NewPurchaseOrderItem, confidence *float64) (*PurchaseOrder, error) {
	return createPurchaseOrder(ctx, items, confidence, PurchaseOrderStatusApproved)
}

func createPurchaseOrder(ctx context.Context, items []NewPurchaseOrderItem, confidence *float64, status PurchaseOrderStatus) (*PurchaseOrder, error) {
	db := config.GetDB()

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: purchase order must contain at least one item", utils.ErrorInvalidArgument)
	}
	for _, item := range items {
		if item.Sku == "" || item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item sku and positive quantity are required", utils.ErrorInvalidArgument)
		}
	}
	if confidence != nil && (*confidence < 0 || *confidence > 1) {
		return nil, fmt.Errorf("%w: confidence must be within [0,1]", utils.ErrorInvalidArgument)
	}

	poItems := make([]PurchaseOrderItem, 0, len(items))
	for _, item := range items {
		poItems = append(poItems, PurchaseOrderItem{
			Sku:      item.Sku,
			Quantity: item.Quantity,
			UnitCost: item.UnitCost,
		})
	}

	po := PurchaseOrder{
		Status:     status,
		Confidence: confidence,
		Items:      poItems,
	}
	if status == PurchaseOrderStatusApproved {
		now := time.Now()
		po.ApprovedAt = &now
	}

	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&po).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &po, nil
}

// ApprovePurchaseOrder moves PENDING_APPROVAL -> APPROVED.
func ApprovePurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	return transitionPurchaseOrder(ctx, id, PurchaseOrderStatusApproved,
		func(tx *gorm.DB, po *PurchaseOrder) error {
			now := time.Now()
			po.ApprovedAt = &now
			return nil
		})
}

// MarkPurchaseOrderDocumentsReady moves APPROVED -> AI_DOCUMENTS_READY once
// the sourcing/receipt documents have been generated for the order.
func MarkPurchaseOrderDocumentsReady(ctx context.Context, id int) (*PurchaseOrder, error) {
	return transitionPurchaseOrder(ctx, id, PurchaseOrderStatusAiDocumentsReady, nil)
}

// FinalizePurchaseOrderManufacturer moves APPROVED|AI_DOCUMENTS_READY ->
// READY_TO_SEND, attaching the manufacturer that will fulfil the order.
func FinalizePurchaseOrderManufacturer(ctx context.Context, id int, manufacturerId int) (*PurchaseOrder, error) {
	if err := utils.ValidateResourceId[Manufacturer](ctx, manufacturerId); err != nil {
		return nil, fmt.Errorf("%w: manufacturer %d", utils.ErrorRecordNotFound, manufacturerId)
	}
	return transitionPurchaseOrder(ctx, id, PurchaseOrderStatusReadyToSend,
		func(tx *gorm.DB, po *PurchaseOrder) error {
			po.ManufacturerId = &manufacturerId
			return nil
		})
}

// MarkPurchaseOrderSent moves READY_TO_SEND -> SENT_TO_MANUFACTURER.
func MarkPurchaseOrderSent(ctx context.Context, id int) (*PurchaseOrder, error) {
	return transitionPurchaseOrder(ctx, id, PurchaseOrderStatusSentToManufacturer,
		func(tx *gorm.DB, po *PurchaseOrder) error {
			now := time.Now()
			po.SentAt = &now
			return nil
		})
}

// MarkPurchaseOrderReceived moves SENT_TO_MANUFACTURER -> RECEIVED and adds
// every item's quantity to stock. Stock updates and the status flip commit
// together; if any item fails the whole transition rolls back.
func MarkPurchaseOrderReceived(ctx context.Context, id int) (*PurchaseOrder, error) {
	return transitionPurchaseOrder(ctx, id, PurchaseOrderStatusReceived,
		func(tx *gorm.DB, po *PurchaseOrder) error {
			for _, item := range po.Items {
				if err := AddStockTx(tx, item.Sku, item.Quantity, StockReferencePurchaseOrder, po.ID); err != nil {
					return err
				}
			}
			now := time.Now()
			po.ReceivedAt = &now
			return nil
		})
}

// DeletePurchaseOrder removes the PO and its items. Allowed only while the
// order is still PENDING_APPROVAL.
func DeletePurchaseOrder(ctx context.Context, id int) error {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()

	var po PurchaseOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&po, id).Error
	if err == gorm.ErrRecordNotFound {
		tx.Rollback()
		return fmt.Errorf("%w: purchase order %d", utils.ErrorRecordNotFound, id)
	}
	if err != nil {
		tx.Rollback()
		return err
	}

	if po.Status != PurchaseOrderStatusPendingApproval {
		tx.Rollback()
		return fmt.Errorf("%w: only pending purchase orders can be deleted", utils.ErrorInvalidState)
	}

	if err := tx.Where("purchase_order_id = ?", id).Delete(&PurchaseOrderItem{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&po).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// transitionPurchaseOrder is the single write path for the PO lifecycle:
// lock the row, validate the transition against the current status, run the
// transition's side effects, persist. One transaction for the whole step.
func transitionPurchaseOrder(ctx context.Context, id int, next PurchaseOrderStatus, sideEffect func(tx *gorm.DB, po *PurchaseOrder) error) (*PurchaseOrder, error) {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var po PurchaseOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&po, id).Error
	if err == gorm.ErrRecordNotFound {
		tx.Rollback()
		return nil, fmt.Errorf("%w: purchase order %d", utils.ErrorRecordNotFound, id)
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if !po.Status.CanTransitionTo(next) {
		tx.Rollback()
		return nil, fmt.Errorf("%w: purchase order %d cannot move %s -> %s", utils.ErrorInvalidState, id, po.Status, next)
	}

	if sideEffect != nil {
		if err := sideEffect(tx, &po); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	po.Status = next
	// items are immutable after create; never cascade them from Save
	if err := tx.Omit(clause.Associations).Save(&po).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &po, nil
}
