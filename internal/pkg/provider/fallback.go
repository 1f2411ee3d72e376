package provider

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
)

// FallbackClient tries a primary provider and, on any failure or timeout,
// repeats the same request against a secondary provider. The secondary's
// response is returned as-is; there is no further fallback.
type FallbackClient struct {
	primary  Client
	fallback Client
	log      *log.Helper
}

// NewFallbackClient creates a fallback chain over two providers.
func NewFallbackClient(primary, fallback Client, logger log.Logger) *FallbackClient {
	return &FallbackClient{
		primary:  primary,
		fallback: fallback,
		log:      log.NewHelper(logger),
	}
}

// Moderate implements Client.
func (c *FallbackClient) Moderate(ctx context.Context, req Request) (*Result, error) {
	result, err := c.primary.Moderate(ctx, req)
	if err == nil {
		return result, nil
	}

	c.log.Warnf("primary moderation provider failed: %v; falling back", err)
	return c.fallback.Moderate(ctx, req)
}
