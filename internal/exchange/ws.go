package exchange

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"futures_bot/pkg/logger"
)

// PriceTick: одно обновление mark price.
type PriceTick struct {
	Symbol string
	Price  float64
	Time   time.Time
}

const maxDialRetries = 8

// StreamPrices: поток mark price по символу (<symbol>@markPrice@1s).
// Переподключается сам; канал закрывается по ctx или после maxDialRetries неудачных dial подряд.
func (c *Client) StreamPrices(ctx context.Context, symbol string) <-chan PriceTick {
	ch := make(chan PriceTick)
	go func() {
		defer close(ch)

		url := c.wsURL + "/ws/" + strings.ToLower(symbol) + "@markPrice@1s"
		retry := 0
		for {
			conn, _, err := c.wsDialer.DialContext(ctx, url, nil)
			if err != nil {
				retry++
				logger.Warn("[WS] dial %s error (%d/%d): %v", symbol, retry, maxDialRetries, err)
				if retry > maxDialRetries {
					return
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Duration(300*retry) * time.Millisecond):
				}
				continue
			}
			retry = 0
			logger.Info("[WS] connected %s", url)

			// ReadMessage не смотрит на ctx: закрываем соединение сами
			stop := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					_ = conn.Close()
				case <-stop:
				}
			}()

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					if ctx.Err() == nil {
						logger.Warn("[WS] read %s error: %v", symbol, err)
					}
					break
				}

				var frame struct {
					Event  string `json:"e"`
					Time   int64  `json:"E"`
					Symbol string `json:"s"`
					Price  string `json:"p"`
				}
				if err := sonic.Unmarshal(msg, &frame); err != nil || frame.Event != "markPriceUpdate" {
					continue
				}
				p := parseFloat(frame.Price)
				if p <= 0 {
					continue
				}

				c.SetPrice(frame.Symbol, p)
				select {
				case ch <- PriceTick{Symbol: frame.Symbol, Price: p, Time: time.UnixMilli(frame.Time)}:
				case <-ctx.Done():
				}
			}
			close(stop)
			_ = conn.Close()

			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}()
	return ch
}
