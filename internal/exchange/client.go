package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"

	"futures_bot/internal/metrics"
	"futures_bot/internal/models"
	"futures_bot/pkg/tracing"
)

const (
	mainnetREST = "https://fapi.binance.com"
	testnetREST = "https://testnet.binancefuture.com"
	mainnetWS   = "wss://fstream.binance.com"
	testnetWS   = "wss://stream.binancefuture.com"
)

type Config struct {
	APIKey     string
	APISecret  string
	Testnet    bool
	BaseURL    string // пусто: по Testnet
	WSURL      string
	Timeout    time.Duration
	RecvWindow time.Duration
}

// Client: REST/WS клиент Binance USDⓈ-M futures.
type Client struct {
	mu     sync.RWMutex
	prices map[string]float64 // последняя известная цена по символу

	http       *http.Client
	wsDialer   *websocket.Dialer
	baseURL    string
	wsURL      string
	apiKey     string
	apiSecret  string
	recvWindow int64
	now        func() time.Time
}

func NewClient(cfg Config) *Client {
	base, ws := mainnetREST, mainnetWS
	if cfg.Testnet {
		base, ws = testnetREST, testnetWS
	}
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.WSURL != "" {
		ws = strings.TrimRight(cfg.WSURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	recv := cfg.RecvWindow
	if recv <= 0 {
		recv = 5 * time.Second
	}
	return &Client{
		prices:     make(map[string]float64),
		http:       &http.Client{Timeout: timeout},
		wsDialer:   &websocket.Dialer{HandshakeTimeout: timeout},
		baseURL:    base,
		wsURL:      ws,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		recvWindow: recv.Milliseconds(),
		now:        time.Now,
	}
}

func (c *Client) SetPrice(symbol string, price float64) {
	c.mu.Lock()
	c.prices[symbol] = price
	c.mu.Unlock()
}

// LastPrice: последняя цена из REST/WS без похода в сеть.
func (c *Client) LastPrice(symbol string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[symbol]
	return p, ok
}

func (c *Client) sign(payload string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// do выполняет запрос и декодирует ответ в out. Любая ошибка: *models.GatewayError.
func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, signed bool, out any) (err error) {
	span, ctx, finish := tracing.StartSpan(ctx, "binance."+op)
	defer func() { finish(err) }()
	ext.HTTPMethod.Set(span, method)
	ext.HTTPUrl.Set(span, path)

	started := time.Now()
	defer func() {
		metrics.GatewayLatency.WithLabelValues(op).Observe(float64(time.Since(started).Milliseconds()))
		if err != nil {
			metrics.GatewayErrors.WithLabelValues(op).Inc()
		}
	}()

	if params == nil {
		params = url.Values{}
	}
	query := params.Encode()
	if signed {
		if c.apiKey == "" || c.apiSecret == "" {
			return &models.GatewayError{Op: op, Msg: "api creds empty"}
		}
		params.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))
		params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
		query = params.Encode()
		query += "&signature=" + c.sign(query)
	}

	u := c.baseURL + path
	if query != "" {
		u += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return &models.GatewayError{Op: op, Err: errors.Wrap(err, "new request")}
	}
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &models.GatewayError{Op: op, Err: errors.Wrap(err, "do")}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.GatewayError{Op: op, HTTPStatus: resp.StatusCode, Err: errors.Wrap(err, "read body")}
	}
	ext.HTTPStatusCode.Set(span, uint16(resp.StatusCode))

	if resp.StatusCode/100 != 2 {
		var ae apiError
		if jerr := sonic.Unmarshal(body, &ae); jerr == nil && ae.Code != 0 {
			return &models.GatewayError{Op: op, HTTPStatus: resp.StatusCode, Code: ae.Code, Msg: ae.Msg}
		}
		return &models.GatewayError{Op: op, HTTPStatus: resp.StatusCode, Msg: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return &models.GatewayError{Op: op, HTTPStatus: resp.StatusCode, Err: errors.Wrapf(err, "decode body=%s", string(body))}
	}
	return nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// parseFloat: биржа отдаёт числа строками; пустая строка = 0.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
