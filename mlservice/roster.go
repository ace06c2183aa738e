package mlservice

import (
	"context"
	"time"
)

// rosterDecideTimeout bounds the remote roster call; the roster flow must
// never block an inbound request on a slow collaborator.
const rosterDecideTimeout = 5 * time.Second

func (c *Client) RosterDecide(ctx context.Context, input *RosterInput) (*RosterDecision, error) {
	ctx, cancel := context.WithTimeout(ctx, rosterDecideTimeout)
	defer cancel()

	return postParsed[RosterDecision](ctx, c, "/roster/decide", input)
}
