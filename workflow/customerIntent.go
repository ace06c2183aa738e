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

// IntentService is the slice of the remote client the intent flow needs.
type IntentService interface {
	ProcessIntent(ctx context.Context, request *mlservice.CustomerIntentRequest) (*mlservice.CustomerIntentResponse, error)
}

// ProcessCustomerIntent turns a free-text customer request into a product
// bundle recommendation: the full stock position goes to the remote agent
// alongside the text. Any remote failure returns the canned clarify response
// instead of an error; the customer surface never hard-fails on the
// collaborator.
func ProcessCustomerIntent(ctx context.Context, svc IntentService, userInput string) (*mlservice.CustomerIntentResponse, error) {
	if strings.TrimSpace(userInput) == "" {
		return nil, fmt.Errorf("%w: userInput is required", utils.ErrorInvalidArgument)
	}

	overview, err := models.ListStockOverview(ctx)
	if err != nil {
		return nil, err
	}

	request := &mlservice.CustomerIntentRequest{UserInput: userInput}
	for _, item := range overview {
		request.StockList = append(request.StockList, mlservice.IntentStockItem{
			Sku:    item.Sku,
			Name:   item.Name,
			OnHand: item.OnHand,
		})
	}

	response, err := svc.ProcessIntent(ctx, request)
	if err != nil || response == nil {
		config.LogError(config.GetLogger(), "customerIntent.go", "ProcessCustomerIntent", "ProcessIntent fallback", userInput, err)
		return fallbackIntentResponse(), nil
	}
	return response, nil
}

func fallbackIntentResponse() *mlservice.CustomerIntentResponse {
	question := "What product or need can I help you with?"
	return &mlservice.CustomerIntentResponse{
		Action:             "CLARIFY",
		IntentCategory:     "INQUIRY",
		Message:            "I'm having trouble processing that right now. Could you please clarify your request?",
		ClarifyingQuestion: &question,
		Bundle:             []mlservice.IntentBundleItem{},
		ConfidenceScore:    0,
	}
}
