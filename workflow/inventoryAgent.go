package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/mlservice"
	"github.com/mmdatafocus/vendex_backend/models"
	"github.com/mmdatafocus/vendex_backend/utils"
)

const forecastLookbackDays = 30

// InventoryDecisionService is the slice of the remote client the pipeline
// needs; tests substitute a fake.
type InventoryDecisionService interface {
	GetForecast(ctx context.Context, request *mlservice.SalesHistoryRequest) (*mlservice.ForecastResponse, error)
	GetDecision(ctx context.Context, payload *mlservice.DecisionPayload) (*mlservice.InventoryDecision, error)
}

type ForecastAndDecideResult struct {
	Sku        string                       `json:"sku"`
	Forecast   int                          `json:"forecast"`
	Confidence float64                      `json:"confidence"`
	Decision   *mlservice.InventoryDecision `json:"decision"`
}

// ForecastAndDecide runs the reorder pipeline for one SKU: aggregate the
// sales series, obtain a forecast and a decision from the remote service,
// then raise a purchase order when the decision and the duplicate guard
// allow one.
func ForecastAndDecide(ctx context.Context, svc InventoryDecisionService, sku string) (*ForecastAndDecideResult, error) {
	logger := config.GetLogger()

	product, err := models.GetProductBySku(ctx, sku)
	if err != nil {
		return nil, err
	}
	stock, err := utils.FetchModelWhere[models.Stock](ctx, "sku = ?", sku)
	if err != nil {
		return nil, fmt.Errorf("%w: stock for sku %s", utils.ErrorRecordNotFound, sku)
	}

	totals, err := models.GetDailySalesTotals(ctx, sku, forecastLookbackDays)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, fmt.Errorf("%w: no sales in the last %d days for sku %s", utils.ErrorInsufficientData, forecastLookbackDays, sku)
	}

	series := make([]float64, 0, len(totals))
	for _, day := range totals {
		series = append(series, float64(day.Total))
	}

	forecast, err := svc.GetForecast(ctx, &mlservice.SalesHistoryRequest{SalesHistory: series})
	if err != nil {
		config.LogError(logger, "inventoryAgent.go", "ForecastAndDecide", "GetForecast", sku, err)
		return nil, err
	}

	decision, err := svc.GetDecision(ctx, &mlservice.DecisionPayload{
		Forecast:     forecast.Forecast,
		Confidence:   forecast.Confidence,
		CurrentStock: stock.OnHand,
		UnitCost:     product.UnitCost.InexactFloat64(),
	})
	if err != nil {
		config.LogError(logger, "inventoryAgent.go", "ForecastAndDecide", "GetDecision", sku, err)
		return nil, err
	}

	if decision.Quantity > 0 {
		if err := raisePurchaseOrder(ctx, product, forecast, decision); err != nil {
			return nil, err
		}
	}

	return &ForecastAndDecideResult{
		Sku:        sku,
		Forecast:   forecast.Forecast,
		Confidence: forecast.Confidence,
		Decision:   decision,
	}, nil
}

// raisePurchaseOrder converts a reorder decision into a purchase order. Each
// path is guarded against stacking duplicate orders for the same SKU; any
// action outside the two reorder actions is a no-op.
func raisePurchaseOrder(ctx context.Context, product *models.Product, forecast *mlservice.ForecastResponse, decision *mlservice.InventoryDecision) error {
	logger := config.GetLogger()

	action := models.DecisionAction(strings.ToUpper(decision.Action))
	if action == models.DecisionActionAutoReorder && !config.AutoReorderEnabled() {
		logger.WithField("sku", product.Sku).Info("auto reorder disabled, downgrading to approval")
		action = models.DecisionActionRequireApproval
	}

	items := []models.NewPurchaseOrderItem{{
		Sku:      product.Sku,
		Quantity: decision.Quantity,
		UnitCost: product.UnitCost,
	}}
	confidence := forecast.Confidence

	switch action {
	case models.DecisionActionRequireApproval:
		pending, err := models.ExistsPurchaseOrderForSku(ctx, product.Sku, models.PurchaseOrderStatusPendingApproval)
		if err != nil {
			return err
		}
		if pending {
			return nil
		}
		_, err = models.CreatePurchaseOrder(ctx, items, &confidence)
		return err

	case models.DecisionActionAutoReorder:
		approved, err := models.ExistsPurchaseOrderForSku(ctx, product.Sku, models.PurchaseOrderStatusApproved)
		if err != nil {
			return err
		}
		if approved {
			return nil
		}
		_, err = models.CreateApprovedPurchaseOrder(ctx, items, &confidence)
		return err
	}

	return nil
}

// BulkForecastAndDecide runs the pipeline over every product. Per-SKU
// failures (insufficient data included) skip the SKU rather than failing the
// batch; the result holds the successful outcomes only.
func BulkForecastAndDecide(ctx context.Context, svc InventoryDecisionService) ([]*ForecastAndDecideResult, error) {
	logger := config.GetLogger()

	products, err := models.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*ForecastAndDecideResult, 0, len(products))
	for _, product := range products {
		result, err := ForecastAndDecide(ctx, svc, product.Sku)
		if err != nil {
			logger.WithField("sku", product.Sku).WithError(err).Warn("skipping sku in bulk forecast")
			continue
		}
		results = append(results, result)
	}
	return results, nil
}
