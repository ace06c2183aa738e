package mlservice

import (
	"context"
	"encoding/json"
)

// GenerateReceipt returns the rendered receipt PDF bytes.
func (c *Client) GenerateReceipt(ctx context.Context, request *ReceiptRequest) ([]byte, error) {
	return c.postJSON(ctx, "/api/generate-receipt", request)
}

// RecommendManufacturer returns the remote ranking verbatim; the caller
// forwards it without interpreting the shape.
func (c *Client) RecommendManufacturer(ctx context.Context, request *SourcingRequest) (json.RawMessage, error) {
	body, err := c.postJSON(ctx, "/api/sourcing/recommend", request)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
