package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
)

const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

type BreakerConfig struct {
	Name        string
	MaxFailures uint32        // consecutive failures before the circuit opens
	Timeout     time.Duration // open -> half-open
	Interval    time.Duration // closed-state count reset period
}

// breakerModel fails fast once the shared backend keeps failing. It never retries.
// Models derived through WithTools share the same breaker.
type breakerModel struct {
	inner   einomodel.ToolCallingChatModel
	breaker *gobreaker.CircuitBreaker[*schema.Message]
}

var _ einomodel.ToolCallingChatModel = (*breakerModel)(nil)

func WithBreaker(inner einomodel.ToolCallingChatModel, cfg BreakerConfig) einomodel.ToolCallingChatModel {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultBreakerInterval
	}
	name := cfg.Name
	if name == "" {
		name = "llm"
	}

	cb := gobreaker.NewCircuitBreaker[*schema.Message](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("llm circuit breaker state change")
		},
		// Cancelled requests say nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &breakerModel{inner: inner, breaker: cb}
}

func (m *breakerModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	out, err := m.breaker.Execute(func() (*schema.Message, error) {
		return m.inner.Generate(ctx, input, opts...)
	})
	if err != nil {
		return nil, breakerError(m.breaker.Name(), err)
	}
	return out, nil
}

// Stream guards only the stream setup; errors read from the stream do not count.
func (m *breakerModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	var stream *schema.StreamReader[*schema.Message]
	_, err := m.breaker.Execute(func() (*schema.Message, error) {
		var streamErr error
		stream, streamErr = m.inner.Stream(ctx, input, opts...)
		return nil, streamErr
	})
	if err != nil {
		return nil, breakerError(m.breaker.Name(), err)
	}
	return stream, nil
}

func (m *breakerModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	bound, err := m.inner.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &breakerModel{inner: bound, breaker: m.breaker}, nil
}

func breakerError(name string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s circuit open: %v", contractx.ErrModelInvoke, name, err)
	}
	return err
}
