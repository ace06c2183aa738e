package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/vendex_backend/mlservice"
	"github.com/mmdatafocus/vendex_backend/models"
	"github.com/mmdatafocus/vendex_backend/utils"
	"github.com/shopspring/decimal"
)

// taxRate is the flat receipt tax applied over the subtotal.
var taxRate = decimal.NewFromFloat(0.05)

// DocumentService is the slice of the remote client the document flows need.
type DocumentService interface {
	GenerateReceipt(ctx context.Context, request *mlservice.ReceiptRequest) ([]byte, error)
	RecommendManufacturer(ctx context.Context, request *mlservice.SourcingRequest) (json.RawMessage, error)
}

// BuildReceiptPayload renders a purchase order into the receipt request. The
// order must be finalized to a manufacturer and that manufacturer must carry
// a payment profile.
func BuildReceiptPayload(ctx context.Context, poId int) (*mlservice.ReceiptRequest, error) {
	po, err := models.GetPurchaseOrder(ctx, poId)
	if err != nil {
		return nil, err
	}
	if po.ManufacturerId == nil {
		return nil, fmt.Errorf("%w: purchase order %d has no manufacturer", utils.ErrorRecordNotFound, poId)
	}
	if len(po.Items) == 0 {
		return nil, fmt.Errorf("%w: purchase order %d has no items", utils.ErrorRecordNotFound, poId)
	}

	manufacturer, err := models.GetManufacturer(ctx, *po.ManufacturerId)
	if err != nil {
		return nil, err
	}
	profile, err := models.GetManufacturerPaymentProfile(ctx, manufacturer.ID)
	if err != nil {
		return nil, err
	}

	request := &mlservice.ReceiptRequest{
		PurchaseOrder: mlservice.ReceiptPurchaseOrderBlock{
			PurchaseOrderId: po.ID,
			CreatedAt:       formatStamp(&po.CreatedAt),
			ApprovedAt:      formatStamp(po.ApprovedAt),
		},
		Manufacturer: mlservice.ReceiptManufacturerBlock{
			Name:            manufacturer.Name,
			EmailId:         manufacturer.EmailId,
			PaymentMode:     string(profile.PreferredPaymentMode),
			AdvanceRequired: utils.DereferencePtr(profile.AdvanceRequired),
		},
	}

	for _, item := range po.Items {
		request.Items = append(request.Items, mlservice.ReceiptItemBlock{
			Sku:      item.Sku,
			Quantity: item.Quantity,
			UnitCost: item.UnitCost.InexactFloat64(),
		})
	}
	request.Totals = computeReceiptTotals(request.Items)
	return request, nil
}

// computeReceiptTotals sums the line subtotal and applies the flat tax.
func computeReceiptTotals(items []mlservice.ReceiptItemBlock) mlservice.ReceiptTotalsBlock {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(decimal.NewFromFloat(item.UnitCost).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	tax := subtotal.Mul(taxRate)
	return mlservice.ReceiptTotalsBlock{
		Subtotal:   subtotal.InexactFloat64(),
		Tax:        tax.InexactFloat64(),
		GrandTotal: subtotal.Add(tax).InexactFloat64(),
	}
}

// BuildSourcingPayload assembles the manufacturer ranking request for a
// purchase order: its items plus every manufacturer as a candidate with
// payment terms, average rating and catalog offers.
func BuildSourcingPayload(ctx context.Context, poId int, preferredPaymentMode models.PaymentMode) (*mlservice.SourcingRequest, error) {
	po, err := models.GetPurchaseOrder(ctx, poId)
	if err != nil {
		return nil, err
	}
	if len(po.Items) == 0 {
		return nil, fmt.Errorf("%w: purchase order %d has no items", utils.ErrorRecordNotFound, poId)
	}

	manufacturers, err := models.ListManufacturers(ctx)
	if err != nil {
		return nil, err
	}
	if len(manufacturers) == 0 {
		return nil, fmt.Errorf("%w: no manufacturers registered", utils.ErrorRecordNotFound)
	}

	request := &mlservice.SourcingRequest{
		Context: mlservice.SourcingContext{
			PurchaseOrderId:      po.ID,
			PreferredPaymentMode: string(preferredPaymentMode),
			Confidence:           po.Confidence,
			CreatedAt:            formatStamp(&po.CreatedAt),
		},
	}
	for _, item := range po.Items {
		request.Items = append(request.Items, mlservice.SourcingItem{
			Sku:      item.Sku,
			Quantity: item.Quantity,
		})
	}

	for _, manufacturer := range manufacturers {
		profile, err := models.GetManufacturerPaymentProfile(ctx, manufacturer.ID)
		if err != nil {
			return nil, err
		}
		avgRating, err := models.GetManufacturerAverageRating(ctx, manufacturer.ID)
		if err != nil {
			return nil, err
		}
		offers, err := models.ListManufacturerProducts(ctx, manufacturer.ID)
		if err != nil {
			return nil, err
		}

		candidate := mlservice.SourcingManufacturerCandidate{
			ManufacturerId:       manufacturer.ID,
			DistanceKm:           manufacturer.DistanceKm.InexactFloat64(),
			AverageRating:        avgRating,
			AdvanceRequired:      utils.DereferencePtr(profile.AdvanceRequired),
			PreferredPaymentMode: string(profile.PreferredPaymentMode),
		}
		for _, offer := range offers {
			candidate.Products = append(candidate.Products, mlservice.SourcingProductOffer{
				Sku:                  offer.ProductName,
				CostPrice:            offer.CostPrice.InexactFloat64(),
				MinimumOrderQuantity: offer.MinimumOrderQuantity,
			})
		}
		request.Manufacturers = append(request.Manufacturers, candidate)
	}
	return request, nil
}

// GeneratePurchaseOrderReceipt builds the payload, fetches the rendered PDF
// and marks the order's documents ready when its state allows it. An order
// past APPROVED keeps its state; the document bytes still return.
func GeneratePurchaseOrderReceipt(ctx context.Context, svc DocumentService, poId int) ([]byte, error) {
	payload, err := BuildReceiptPayload(ctx, poId)
	if err != nil {
		return nil, err
	}

	pdf, err := svc.GenerateReceipt(ctx, payload)
	if err != nil {
		return nil, err
	}

	if _, err := models.MarkPurchaseOrderDocumentsReady(ctx, poId); err != nil && !errors.Is(err, utils.ErrorInvalidState) {
		return nil, err
	}
	return pdf, nil
}

// RecommendManufacturer forwards the sourcing payload to the remote ranker
// and returns its response verbatim.
func RecommendManufacturer(ctx context.Context, svc DocumentService, poId int, preferredPaymentMode models.PaymentMode) (json.RawMessage, error) {
	payload, err := BuildSourcingPayload(ctx, poId, preferredPaymentMode)
	if err != nil {
		return nil, err
	}
	return svc.RecommendManufacturer(ctx, payload)
}

func formatStamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
