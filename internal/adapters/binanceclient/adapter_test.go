package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"
)

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (noopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestToBinanceSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BTC-USD", "BTCUSDT"},
		{"ETH/USD", "ETHUSDT"},
		{"sol-usd", "SOLUSDT"},
		{"BTCUSDT", "BTCUSDT"},
		{"ARB_USD", "ARBUSDT"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toBinanceSymbol(tt.in), tt.in)
	}
}

func TestOrderSides(t *testing.T) {
	assert.Equal(t, futures.SideTypeBuy, entrySide(domain.Long))
	assert.Equal(t, futures.SideTypeSell, entrySide(domain.Short))
	assert.Equal(t, futures.SideTypeSell, exitSide(domain.Long))
	assert.Equal(t, futures.SideTypeBuy, exitSide(domain.Short))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{Logger: &noopLogger{}})
	assert.Error(t, err)
}

func TestHandleErrorMapsAPICodes(t *testing.T) {
	a := &Adapter{logger: &noopLogger{}}
	ctx := context.Background()

	tests := []struct {
		name string
		code int64
		want error
	}{
		{"rate limited", -1003, ports.ErrRateLimited},
		{"recv window", -1021, ports.ErrTimeout},
		{"bad signature", -1022, ports.ErrAuthenticationFailed},
		{"bad parameter", -1102, ports.ErrInvalidRequest},
		{"order rejected", -2010, ports.ErrOrderPlacementFailed},
		{"cancel rejected", -2011, ports.ErrOrderCancelFailed},
		{"order missing", -2013, ports.ErrOrderNotFound},
		{"bad api key", -2014, ports.ErrInvalidAPIKeys},
		{"bad permissions", -2015, ports.ErrInvalidAPIKeys},
		{"margin insufficient", -2019, ports.ErrInsufficientFunds},
		{"balance insufficient", -3005, ports.ErrInsufficientFunds},
		{"qty out of range", -4003, ports.ErrInvalidRequest},
		{"bad leverage", -4015, ports.ErrInvalidRequest},
		{"position missing", -4044, ports.ErrPositionNotFound},
		{"unmapped code", -9999, ports.ErrUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := &common.APIError{Code: tt.code, Message: tt.name}
			err := a.handleError(ctx, apiErr, "TestOp")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "code %d should map to %v, got: %v", tt.code, tt.want, err)
			assert.True(t, errors.Is(err, apiErr), "original API error must stay in the chain")
		})
	}
}

func TestHandleErrorMapsTransportErrors(t *testing.T) {
	a := &Adapter{logger: &noopLogger{}}
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, ports.ErrTimeout},
		{"canceled", context.Canceled, ports.ErrContextCanceled},
		{"conn refused", fmt.Errorf("dial tcp: connection refused"), ports.ErrConnectionFailed},
		{"conn reset", fmt.Errorf("read: connection reset by peer"), ports.ErrConnectionFailed},
		{"other", fmt.Errorf("unexpected EOF"), ports.ErrUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.handleError(ctx, tt.err, "TestOp")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "should map to %v, got: %v", tt.want, err)
		})
	}
}
