package syncer

import (
	"context"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"

	"github.com/compazz/posbridge/internal/domain"
)

const httpPushTimeout = 10 * time.Second

// HTTPPusher posts queue items to the backend sync endpoint one at a
// time. The endpoint must answer 2xx only after the operation is durably
// accepted; anything else leaves the item queued.
type HTTPPusher struct {
	endpoint string
	apiKey   string
}

func NewHTTPPusher(endpoint, apiKey string) *HTTPPusher {
	return &HTTPPusher{endpoint: endpoint, apiKey: apiKey}
}

func (p *HTTPPusher) Name() string { return "http" }

func (p *HTTPPusher) Push(ctx context.Context, item domain.SyncQueueItem) error {
	if p.endpoint == "" {
		return errors.New("sync endpoint not configured")
	}

	body := map[string]interface{}{
		"type":      item.Type,
		"payload":   item.Payload,
		"queued_at": item.CreatedAt,
		"attempts":  item.Attempts,
	}

	var code int
	err := gout.POST(p.endpoint).
		WithContext(ctx).
		SetHeader(gout.H{"X-Api-Key": p.apiKey}).
		SetTimeout(httpPushTimeout).
		SetJSON(body).
		Code(&code).
		Do()
	if err != nil {
		return errors.Errorf("sync push: %v", err)
	}
	if code < 200 || code > 299 {
		return errors.Errorf("sync push: backend returned %d", code)
	}
	return nil
}
