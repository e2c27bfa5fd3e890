package llm

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	"golang.org/x/time/rate"
)

// throttledModel waits on a requests-per-minute token bucket before each model
// call. The bucket starts full, so a burst of rpm calls passes immediately.
// Models derived through WithTools share the same limiter.
type throttledModel struct {
	inner   einomodel.ToolCallingChatModel
	limiter *rate.Limiter
}

var _ einomodel.ToolCallingChatModel = (*throttledModel)(nil)

// Throttle returns inner unchanged when rpm is not positive.
func Throttle(inner einomodel.ToolCallingChatModel, rpm int) einomodel.ToolCallingChatModel {
	if rpm <= 0 {
		return inner
	}
	return &throttledModel{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
	}
}

func (m *throttledModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.inner.Generate(ctx, input, opts...)
}

func (m *throttledModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.inner.Stream(ctx, input, opts...)
}

func (m *throttledModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	bound, err := m.inner.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &throttledModel{inner: bound, limiter: m.limiter}, nil
}

func (m *throttledModel) wait(ctx context.Context) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", contractx.ErrModelInvoke, err)
	}
	log.Ctx(ctx).Debug().Float64("tokens_left", m.limiter.Tokens()).Msg("model call")
	return nil
}
