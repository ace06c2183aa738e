package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/vendex_backend/mlservice"
	"github.com/mmdatafocus/vendex_backend/models"
	"github.com/mmdatafocus/vendex_backend/utils"
	"github.com/mmdatafocus/vendex_backend/workflow"
	"github.com/shopspring/decimal"
)

// fakeDecisionService returns canned answers instead of calling the decision
// service, and records the payloads it was handed.
type fakeDecisionService struct {
	forecast *mlservice.ForecastResponse
	decision *mlservice.InventoryDecision

	forecastCalls []*mlservice.SalesHistoryRequest
	decisionCalls []*mlservice.DecisionPayload
}

func (f *fakeDecisionService) GetForecast(_ context.Context, request *mlservice.SalesHistoryRequest) (*mlservice.ForecastResponse, error) {
	f.forecastCalls = append(f.forecastCalls, request)
	return f.forecast, nil
}

func (f *fakeDecisionService) GetDecision(_ context.Context, payload *mlservice.DecisionPayload) (*mlservice.InventoryDecision, error) {
	f.decisionCalls = append(f.decisionCalls, payload)
	return f.decision, nil
}

func seedProductWithSales(t *testing.T, sku string) *models.Product {
	t.Helper()
	ctx := context.Background()

	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:         sku,
		ProductName: "Test " + sku,
		Category:    "SNACKS",
		UnitCost:    decimal.NewFromFloat(12.5),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if err := models.AddStock(ctx, sku, 100); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	for i := 0; i < 5; i++ {
		_, err := models.CreateSalesRecord(ctx, &models.NewSalesRecord{
			Sku:          sku,
			QuantitySold: 3,
			SaleDate:     time.Now().AddDate(0, 0, -i),
		})
		if err != nil {
			t.Fatalf("CreateSalesRecord: %v", err)
		}
	}
	return product
}

func ordersWithStatus(t *testing.T, status models.PurchaseOrderStatus) []*models.PurchaseOrder {
	t.Helper()
	orders, err := models.ListPurchaseOrders(context.Background())
	if err != nil {
		t.Fatalf("ListPurchaseOrders: %v", err)
	}
	matched := make([]*models.PurchaseOrder, 0, len(orders))
	for _, po := range orders {
		if po.Status == status {
			matched = append(matched, po)
		}
	}
	return matched
}

func TestForecastAndDecideRequiresApproval(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	seedProductWithSales(t, "FAD-APPROVAL")

	svc := &fakeDecisionService{
		forecast: &mlservice.ForecastResponse{Forecast: 40, Confidence: 0.7},
		decision: &mlservice.InventoryDecision{Action: "REQUIRE_APPROVAL", Quantity: 20, Reason: "moderate confidence"},
	}

	result, err := workflow.ForecastAndDecide(ctx, svc, "FAD-APPROVAL")
	if err != nil {
		t.Fatalf("ForecastAndDecide: %v", err)
	}
	if result.Forecast != 40 || result.Decision.Quantity != 20 {
		t.Fatalf("result = %+v", result)
	}
	if len(svc.forecastCalls) != 1 || len(svc.forecastCalls[0].SalesHistory) != 5 {
		t.Fatalf("forecast calls = %+v, want one call with 5 daily totals", svc.forecastCalls)
	}
	if len(svc.decisionCalls) != 1 {
		t.Fatalf("decision calls = %d, want 1", len(svc.decisionCalls))
	}
	if svc.decisionCalls[0].CurrentStock != 85 {
		t.Fatalf("current stock passed = %d, want 85", svc.decisionCalls[0].CurrentStock)
	}

	pending := ordersWithStatus(t, models.PurchaseOrderStatusPendingApproval)
	if len(pending) != 1 {
		t.Fatalf("pending orders = %d, want 1", len(pending))
	}
	po := pending[0]
	if po.Confidence == nil || *po.Confidence != 0.7 {
		t.Fatalf("confidence = %v, want 0.7", po.Confidence)
	}
	if len(po.Items) != 1 || po.Items[0].Sku != "FAD-APPROVAL" || po.Items[0].Quantity != 20 {
		t.Fatalf("items = %+v", po.Items)
	}

	// a second run must not stack another order behind the pending one
	if _, err := workflow.ForecastAndDecide(ctx, svc, "FAD-APPROVAL"); err != nil {
		t.Fatalf("second ForecastAndDecide: %v", err)
	}
	if pending := ordersWithStatus(t, models.PurchaseOrderStatusPendingApproval); len(pending) != 1 {
		t.Fatalf("pending orders after rerun = %d, want 1", len(pending))
	}
}

func TestForecastAndDecideAutoReorder(t *testing.T) {
	setupIntegration(t)
	t.Setenv("VENDEX_AUTO_REORDER", "true")
	ctx := context.Background()
	seedProductWithSales(t, "FAD-AUTO")

	svc := &fakeDecisionService{
		forecast: &mlservice.ForecastResponse{Forecast: 60, Confidence: 0.9},
		decision: &mlservice.InventoryDecision{Action: "AUTO_REORDER", Quantity: 35, Reason: "high confidence"},
	}

	if _, err := workflow.ForecastAndDecide(ctx, svc, "FAD-AUTO"); err != nil {
		t.Fatalf("ForecastAndDecide: %v", err)
	}

	approved := ordersWithStatus(t, models.PurchaseOrderStatusApproved)
	if len(approved) != 1 {
		t.Fatalf("approved orders = %d, want 1", len(approved))
	}
	if approved[0].ApprovedAt == nil {
		t.Fatal("ApprovedAt not stamped on auto reorder")
	}

	if _, err := workflow.ForecastAndDecide(ctx, svc, "FAD-AUTO"); err != nil {
		t.Fatalf("second ForecastAndDecide: %v", err)
	}
	if approved := ordersWithStatus(t, models.PurchaseOrderStatusApproved); len(approved) != 1 {
		t.Fatalf("approved orders after rerun = %d, want 1", len(approved))
	}
}

func TestForecastAndDecideAutoReorderDowngradedWhenDisabled(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	seedProductWithSales(t, "FAD-DOWNGRADE")

	svc := &fakeDecisionService{
		forecast: &mlservice.ForecastResponse{Forecast: 60, Confidence: 0.9},
		decision: &mlservice.InventoryDecision{Action: "AUTO_REORDER", Quantity: 35, Reason: "high confidence"},
	}

	if _, err := workflow.ForecastAndDecide(ctx, svc, "FAD-DOWNGRADE"); err != nil {
		t.Fatalf("ForecastAndDecide: %v", err)
	}

	if approved := ordersWithStatus(t, models.PurchaseOrderStatusApproved); len(approved) != 0 {
		t.Fatalf("approved orders = %d, want 0 with flag off", len(approved))
	}
	if pending := ordersWithStatus(t, models.PurchaseOrderStatusPendingApproval); len(pending) != 1 {
		t.Fatalf("pending orders = %d, want 1 after downgrade", len(pending))
	}
}

func TestForecastAndDecideNoActionRaisesNothing(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	seedProductWithSales(t, "FAD-NONE")

	svc := &fakeDecisionService{
		forecast: &mlservice.ForecastResponse{Forecast: 5, Confidence: 0.95},
		decision: &mlservice.InventoryDecision{Action: "NONE", Quantity: 0, Reason: "stock covers forecast"},
	}

	if _, err := workflow.ForecastAndDecide(ctx, svc, "FAD-NONE"); err != nil {
		t.Fatalf("ForecastAndDecide: %v", err)
	}
	orders, err := models.ListPurchaseOrders(ctx)
	if err != nil {
		t.Fatalf("ListPurchaseOrders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("orders = %d, want 0", len(orders))
	}
}

func TestForecastAndDecideNoSalesHistory(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()

	_, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:         "FAD-NOSALES",
		ProductName: "Never Sold",
		UnitCost:    decimal.NewFromFloat(3),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	svc := &fakeDecisionService{}
	_, err = workflow.ForecastAndDecide(ctx, svc, "FAD-NOSALES")
	if !errors.Is(err, utils.ErrorInsufficientData) {
		t.Fatalf("err = %v, want ErrorInsufficientData", err)
	}
	if len(svc.forecastCalls) != 0 {
		t.Fatal("forecast service called despite empty history")
	}
}

type failingIntentService struct{ calls int }

func (f *failingIntentService) ProcessIntent(_ context.Context, _ *mlservice.CustomerIntentRequest) (*mlservice.CustomerIntentResponse, error) {
	f.calls++
	return nil, errors.New("agent unavailable")
}

func TestProcessCustomerIntentFallsBackOnRemoteFailure(t *testing.T) {
	setupIntegration(t)
	ctx := context.Background()
	seedProductWithSales(t, "INTENT-1")

	svc := &failingIntentService{}
	resp, err := workflow.ProcessCustomerIntent(ctx, svc, "something for a headache")
	if err != nil {
		t.Fatalf("ProcessCustomerIntent: %v", err)
	}
	if svc.calls != 1 {
		t.Fatalf("remote calls = %d, want 1", svc.calls)
	}
	if resp.Action != "CLARIFY" || resp.ConfidenceScore != 0 {
		t.Fatalf("fallback = %+v", resp)
	}
}

func TestProcessCustomerIntentEmptyInput(t *testing.T) {
	setupIntegration(t)

	_, err := workflow.ProcessCustomerIntent(context.Background(), &failingIntentService{}, "  ")
	if !errors.Is(err, utils.ErrorInvalidArgument) {
		t.Fatalf("err = %v, want ErrorInvalidArgument", err)
	}
}

func TestForecastAndDecideUnknownSku(t *testing.T) {
	setupIntegration(t)

	_, err := workflow.ForecastAndDecide(context.Background(), &fakeDecisionService{}, "NO-SUCH-SKU")
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("err = %v, want ErrorRecordNotFound", err)
	}
}
