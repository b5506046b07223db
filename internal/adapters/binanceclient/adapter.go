// Package binanceclient implements the live VenueAdapter for the BINANCE
// venue on top of the go-binance futures client.
package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"
)

// Adapter implements ports.VenueAdapter against Binance USD-M futures.
type Adapter struct {
	futuresClient *futures.Client
	logger        ports.Logger
}

// Config holds configuration specific to the Binance venue adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
}

// New creates a new Binance venue adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance adapter")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("API key and secret are required for Binance adapter: %w", ports.ErrConfigurationError)
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	// Set BaseURL directly instead of using global futures.UseTestnet
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Binance adapter configured for Testnet", map[string]interface{}{"baseURL": client.BaseURL})
	} else {
		client.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Binance adapter configured for Production", map[string]interface{}{"baseURL": client.BaseURL})
	}

	return &Adapter{futuresClient: client, logger: cfg.Logger}, nil
}

// Venue returns the venue this adapter executes against.
func (a *Adapter) Venue() domain.Venue { return domain.VenueBinance }

// OpenPosition opens or increases a futures position with a market order.
// Leverage is applied first when the source event carries one.
func (a *Adapter) OpenPosition(ctx context.Context, intent *domain.ExecutionIntent, snapshot ports.PriceSnapshot) (*domain.ExecutionResult, error) {
	op := "OpenPosition"
	symbol := toBinanceSymbol(snapshot.Symbol)

	qty, err := a.orderQuantity(ctx, symbol, intent.Event.SizeUsd, snapshot.Price)
	if err != nil {
		return nil, a.handleError(ctx, err, op)
	}

	if lev := int(intent.Event.Leverage); lev > 0 {
		if _, err := a.futuresClient.NewChangeLeverageService().Symbol(symbol).Leverage(lev).Do(ctx); err != nil {
			return nil, a.handleError(ctx, err, op)
		}
	}

	order, err := a.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(entrySide(intent.Event.Side)).
		Type(futures.OrderTypeMarket).
		Quantity(qty).
		Do(ctx)
	if err != nil {
		return nil, a.handleError(ctx, err, op)
	}

	orderID := strconv.FormatInt(order.OrderID, 10)
	a.logger.Info(ctx, op+" successful", map[string]interface{}{
		"symbol":   symbol,
		"side":     intent.Event.Side,
		"quantity": qty,
		"orderID":  orderID,
	})

	// Futures positions are keyed by symbol, which serves as the venue-side
	// position identifier for later intents.
	return domain.Success(orderID, symbol), nil
}

// ClosePosition closes or decreases a futures position with a reduce-only
// market order in the opposite direction.
func (a *Adapter) ClosePosition(ctx context.Context, intent *domain.ExecutionIntent, snapshot ports.PriceSnapshot) (*domain.ExecutionResult, error) {
	op := "ClosePosition"
	symbol := toBinanceSymbol(snapshot.Symbol)
	if intent.VenuePositionID != "" {
		symbol = intent.VenuePositionID
	}

	qty, err := a.orderQuantity(ctx, symbol, intent.Event.SizeUsd, snapshot.Price)
	if err != nil {
		return nil, a.handleError(ctx, err, op)
	}

	order, err := a.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(exitSide(intent.Event.Side)).
		Type(futures.OrderTypeMarket).
		Quantity(qty).
		ReduceOnly(true).
		Do(ctx)
	if err != nil {
		return nil, a.handleError(ctx, err, op)
	}

	orderID := strconv.FormatInt(order.OrderID, 10)
	a.logger.Info(ctx, op+" successful", map[string]interface{}{
		"symbol":   symbol,
		"quantity": qty,
		"orderID":  orderID,
	})
	return domain.Success(orderID, symbol), nil
}

// UpdateTpSl is not supported by this adapter yet. The outcome is a terminal
// FAILED result so the attempt is still recorded.
// TODO: place paired TAKE_PROFIT_MARKET/STOP_MARKET close orders once order
// replacement is wired through the mapping repository.
func (a *Adapter) UpdateTpSl(ctx context.Context, intent *domain.ExecutionIntent, snapshot ports.PriceSnapshot) (*domain.ExecutionResult, error) {
	a.logger.Warn(ctx, "UpdateTpSl requested but not implemented for Binance", map[string]interface{}{
		"sourceTradeId": intent.Event.SourceTradeID,
	})
	return domain.Failed("update_tpsl_not_implemented"), nil
}

// CancelOrder cancels a pending order previously created by this adapter.
func (a *Adapter) CancelOrder(ctx context.Context, intent *domain.ExecutionIntent, snapshot ports.PriceSnapshot) (*domain.ExecutionResult, error) {
	op := "CancelOrder"
	if intent.VenueOrderID == "" {
		return domain.Failed("missing_venue_order_id"), nil
	}
	orderID, err := strconv.ParseInt(intent.VenueOrderID, 10, 64)
	if err != nil {
		return domain.Failed(fmt.Sprintf("malformed venue order id %q", intent.VenueOrderID)), nil
	}

	symbol := toBinanceSymbol(snapshot.Symbol)
	if intent.VenuePositionID != "" {
		symbol = intent.VenuePositionID
	}

	_, err = a.futuresClient.NewCancelOrderService().
		Symbol(symbol).
		OrderID(orderID).
		Do(ctx)
	if err != nil {
		return nil, a.handleError(ctx, err, op)
	}

	a.logger.Info(ctx, op+" successful", map[string]interface{}{"symbol": symbol, "orderID": intent.VenueOrderID})
	return domain.Success(intent.VenueOrderID, symbol), nil
}

// orderQuantity converts a USD notional into a base-asset quantity string.
// Falls back to the live mark price when the feed omitted a price.
func (a *Adapter) orderQuantity(ctx context.Context, symbol string, sizeUsd, price float64) (string, error) {
	if sizeUsd <= 0 {
		return "", fmt.Errorf("size must be positive, got %v: %w", sizeUsd, ports.ErrInvalidRequest)
	}
	if price <= 0 {
		marked, err := a.markPrice(ctx, symbol)
		if err != nil {
			return "", err
		}
		price = marked
	}
	qty := sizeUsd / price
	return strconv.FormatFloat(qty, 'f', 6, 64), nil
}

// markPrice retrieves the current mark price for a given symbol.
func (a *Adapter) markPrice(ctx context.Context, symbol string) (float64, error) {
	tickers, err := a.futuresClient.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(tickers) == 0 {
		return 0, fmt.Errorf("no price data returned for symbol %s", symbol)
	}
	price, err := strconv.ParseFloat(tickers[0].MarkPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse price '%s': %w", tickers[0].MarkPrice, err)
	}
	return price, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (a *Adapter) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		// Map specific Binance error codes to custom errors
		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Signature for this request is not valid
			mappedErr = ports.ErrAuthenticationFailed
		case -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1121, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		case -2010: // New order rejected
			mappedErr = ports.ErrOrderPlacementFailed
		case -2011: // Cancel order rejected
			mappedErr = ports.ErrOrderCancelFailed
		case -2013: // Order does not exist
			mappedErr = ports.ErrOrderNotFound
		case -2014: // API-key format invalid
			mappedErr = ports.ErrInvalidAPIKeys
		case -2015: // Invalid API-key, IP, or permissions for action
			mappedErr = ports.ErrInvalidAPIKeys
		case -2019: // Margin is insufficient
			mappedErr = ports.ErrInsufficientFunds
		case -2022: // ReduceOnly Order is rejected
			mappedErr = ports.ErrOrderPlacementFailed
		case -3005: // Insufficient balance
			mappedErr = ports.ErrInsufficientFunds
		case -3041: // Position is not sufficient
			mappedErr = ports.ErrInsufficientFunds
		case -4003: // Qty not within permissible range
			mappedErr = ports.ErrInvalidRequest
		case -4014: // Price not within permissible range
			mappedErr = ports.ErrInvalidRequest
		case -4015: // Leverage is not valid
			mappedErr = ports.ErrInvalidRequest
		case -4044: // Position not found
			mappedErr = ports.ErrPositionNotFound
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		a.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	a.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// toBinanceSymbol maps feed symbols like "BTC-USD" or "ETH/USD" onto the
// USD-M futures convention ("BTCUSDT").
func toBinanceSymbol(symbol string) string {
	s := strings.ToUpper(symbol)
	s = strings.NewReplacer("-", "", "/", "", "_", "").Replace(s)
	if strings.HasSuffix(s, "USD") {
		s += "T"
	}
	return s
}

func entrySide(side domain.PositionSide) futures.SideType {
	if side == domain.Short {
		return futures.SideTypeSell
	}
	return futures.SideTypeBuy
}

func exitSide(side domain.PositionSide) futures.SideType {
	if side == domain.Short {
		return futures.SideTypeBuy
	}
	return futures.SideTypeSell
}
