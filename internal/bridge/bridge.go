// Package bridge implements the TCP line-JSON adapter to the terminal-side
// expert advisor. It satisfies both broker ports: market data and order
// execution.
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"goldbot/internal/broker"
	"goldbot/internal/model"
)

// Client is a persistent connection to the terminal bridge. One request and
// one response travel per line; the connection is re-dialed on any fault.
// All calls carry a bounded deadline — an unbounded block here would stall
// the whole strategy loop.
type Client struct {
	address     string
	dialTimeout time.Duration
	reqTimeout  time.Duration
	logger      *zap.Logger

	mu   sync.Mutex // serializes the wire; guards conn and rd
	conn net.Conn
	rd   *bufio.Reader
}

// request is the wire envelope sent to the terminal.
type request struct {
	Op        string              `json:"op"`
	Symbol    string              `json:"symbol,omitempty"`
	Timeframe model.Timeframe     `json:"timeframe,omitempty"`
	Count     int                 `json:"count,omitempty"`
	Order     *model.OrderRequest `json:"order,omitempty"`
}

// response is the wire envelope received from the terminal.
type response struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// New creates a bridge client. No connection is made until the first call.
func New(address string, dialTimeout, reqTimeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		address:     address,
		dialTimeout: dialTimeout,
		reqTimeout:  reqTimeout,
		logger:      logger,
	}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.rd = nil
		return err
	}
	return nil
}

// Candles implements broker.MarketData.
func (c *Client) Candles(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.Candle, error) {
	var candles []model.Candle
	err := c.roundTrip(ctx, request{Op: "candles", Symbol: symbol, Timeframe: tf, Count: count}, &candles)
	if err != nil {
		return nil, fmt.Errorf("bridge candles %s/%s: %w (%v)", symbol, tf, broker.ErrDataUnavailable, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("bridge candles %s/%s: empty series: %w", symbol, tf, broker.ErrDataUnavailable)
	}
	return candles, nil
}

// Quote implements broker.MarketData.
func (c *Client) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	var quote model.Quote
	if err := c.roundTrip(ctx, request{Op: "quote", Symbol: symbol}, &quote); err != nil {
		return model.Quote{}, fmt.Errorf("bridge quote %s: %w (%v)", symbol, broker.ErrDataUnavailable, err)
	}
	return quote, nil
}

// Account implements broker.MarketData.
func (c *Client) Account(ctx context.Context) (model.AccountSnapshot, error) {
	var acct model.AccountSnapshot
	if err := c.roundTrip(ctx, request{Op: "account"}, &acct); err != nil {
		return model.AccountSnapshot{}, fmt.Errorf("bridge account: %w (%v)", broker.ErrDataUnavailable, err)
	}
	return acct, nil
}

// Positions implements broker.Gateway.
func (c *Client) Positions(ctx context.Context, symbol string) ([]model.Position, error) {
	var positions []model.Position
	if err := c.roundTrip(ctx, request{Op: "positions", Symbol: symbol}, &positions); err != nil {
		return nil, fmt.Errorf("bridge positions: %w (%v)", broker.ErrGatewayUnavailable, err)
	}
	return positions, nil
}

// SubmitOrder implements broker.Gateway. A transport fault returns an error
// wrapping broker.ErrGatewayUnavailable; a business decline arrives as an
// OrderResult with Accepted=false and a nil error.
func (c *Client) SubmitOrder(ctx context.Context, req model.OrderRequest) (model.OrderResult, error) {
	var result model.OrderResult
	if err := c.roundTrip(ctx, request{Op: "order", Order: &req}, &result); err != nil {
		return model.OrderResult{}, fmt.Errorf("bridge order: %w (%v)", broker.ErrGatewayUnavailable, err)
	}
	return result, nil
}

// Ping checks terminal connectivity, used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var ok struct{}
	return c.roundTrip(ctx, request{Op: "ping"}, &ok)
}

// roundTrip sends one request line and decodes one response line. The wire
// is serialized under the mutex; the connection is dropped on any IO fault
// so the next call re-dials.
func (c *Client) roundTrip(ctx context.Context, req request, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConn(ctx); err != nil {
		return err
	}

	deadline := time.Now().Add(c.reqTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.drop()
		return fmt.Errorf("setting deadline: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", req.Op, err)
	}
	payload = append(payload, '\n')
	if _, err := c.conn.Write(payload); err != nil {
		c.drop()
		return fmt.Errorf("writing %s request: %w", req.Op, err)
	}

	line, err := c.rd.ReadBytes('\n')
	if err != nil {
		c.drop()
		return fmt.Errorf("reading %s response: %w", req.Op, err)
	}

	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		c.drop()
		return fmt.Errorf("decoding %s response: %w", req.Op, err)
	}
	if !resp.OK {
		return fmt.Errorf("terminal error on %s: %s", req.Op, resp.Error)
	}
	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("decoding %s data: %w", req.Op, err)
		}
	}
	return nil
}

// ensureConn dials the terminal if no live connection exists. Callers hold c.mu.
func (c *Client) ensureConn(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return fmt.Errorf("dialing bridge %s: %w", c.address, err)
	}
	c.conn = conn
	c.rd = bufio.NewReader(conn)
	c.logger.Info("bridge_connected", zap.String("address", c.address))
	return nil
}

// drop discards the connection after a fault. Callers hold c.mu.
func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.rd = nil
		c.logger.Warn("bridge_disconnected", zap.String("address", c.address))
	}
}
