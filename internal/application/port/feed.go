package port

import (
	"context"

	"arbdiff/internal/domain/model"
)

// FeedConnector streams raw exchange payloads for one (platform, market).
// Connect returns a channel of decoded websocket frames; the connector
// reconnects internally on transport failure and closes the channel only
// when ctx is cancelled.
type FeedConnector interface {
	Platform() model.Platform
	Market() model.Market
	Connect(ctx context.Context) (<-chan []byte, error)
}
