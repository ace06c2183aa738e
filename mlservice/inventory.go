package mlservice

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/vendex_backend/utils"
)

func (c *Client) GetForecast(ctx context.Context, request *SalesHistoryRequest) (*ForecastResponse, error) {
	if len(request.SalesHistory) == 0 {
		return nil, fmt.Errorf("%w: sales history is empty", utils.ErrorInsufficientData)
	}
	return postParsed[ForecastResponse](ctx, c, "/api/forecast", request)
}

func (c *Client) GetDecision(ctx context.Context, payload *DecisionPayload) (*InventoryDecision, error) {
	return postParsed[InventoryDecision](ctx, c, "/api/decision", payload)
}
