package mlservice

import (
	"context"
	"time"
)

// processIntentTimeout bounds the customer-intent call. The intent flow has a
// canned fallback, so a slow collaborator degrades rather than blocks.
const processIntentTimeout = 15 * time.Second

func (c *Client) ProcessIntent(ctx context.Context, request *CustomerIntentRequest) (*CustomerIntentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, processIntentTimeout)
	defer cancel()

	return postParsed[CustomerIntentResponse](ctx, c, "/api/process-intent", request)
}
