// Package ws is the TanX stream client. Public streams need no session;
// private streams authenticate with the access token of a logged in
// exchange client.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/banky/go-tanx/types"
	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	pingInterval = 50 * time.Second
	writeTimeout = 5 * time.Second
)

// Event is the action of a control frame
type Event string

const (
	EventSubscribe   Event = "subscribe"
	EventUnsubscribe Event = "unsubscribe"
)

// Message is the control frame sent to change the set of streams a
// connection receives
type Message struct {
	Event   Event    `json:"event"`
	Streams []string `json:"streams"`
}

// Private stream names
const (
	OrderStream = "order"
	TradeStream = "trade"
)

// TradesStream is the public trade stream of market
func TradesStream(market string) string {
	return strings.ToLower(market) + ".trades"
}

// OrderBookStream is the incremental order book stream of market
func OrderBookStream(market string) string {
	return strings.ToLower(market) + ".ob-inc"
}

// KlineStream is the candlestick stream of market for interval, e.g. "5m"
func KlineStream(market, interval string) string {
	return fmt.Sprintf("%s.kline-%s", strings.ToLower(market), interval)
}

type Config struct {
	Environment types.Environment
	// URL overrides the environment's websocket URL
	URL string
	// Private selects the authenticated endpoint. AccessToken is then
	// required.
	Private     bool
	AccessToken string
	Logger      logrus.FieldLogger
	// Buffer is the capacity of the Messages channel
	Buffer int
}

// Client is a single stream connection. Frames received from the server
// are delivered unparsed on Messages.
type Client struct {
	url    string
	logger logrus.FieldLogger

	mu       sync.RWMutex
	conn     *websocket.Conn
	starting bool
	messages chan []byte
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New validates cfg and returns an unconnected client
func New(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	base := cfg.URL
	if base == "" {
		env := cfg.Environment.OrDefault()
		if !env.Valid() {
			return nil, fmt.Errorf("unknown environment: %q", cfg.Environment)
		}
		base = env.WsURL()
	}
	base = strings.TrimRight(base, "/")

	endpoint := base + "/public"
	kind := "public"
	if cfg.Private {
		if cfg.AccessToken == "" {
			return nil, &types.AuthenticationError{
				Msg: "an access token is required for private connections",
			}
		}
		endpoint = base + "/private?auth_header=" + url.QueryEscape(cfg.AccessToken)
		kind = "private"
	}

	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 256
	}

	return &Client{
		url:      endpoint,
		logger:   logger.WithField("ws", kind),
		messages: make(chan []byte, buffer),
		stopChan: make(chan struct{}),
	}, nil
}

// Start connects and starts the read and ping loops. A client is started
// at most once; create a new one to reconnect.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.starting || c.conn != nil || c.stopped() {
		c.mu.Unlock()
		return fmt.Errorf("websocket already started")
	}
	c.starting = true
	c.mu.Unlock()

	conn, _, err := websocket.Dial(ctx, c.url, nil)

	c.mu.Lock()
	c.starting = false
	if err == nil {
		c.conn = conn
	}
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to connect to websocket: %w", err)
	}

	c.logger.Info("websocket connected")

	c.wg.Add(2)
	go c.readLoop(conn)
	go c.pingLoop(conn)

	return nil
}

// Stop closes the connection and waits for the loops to exit. The
// Messages channel is closed once the read loop has returned.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)

		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close(websocket.StatusNormalClosure, "closing")
		}
		c.mu.Unlock()
	})

	c.wg.Wait()
}

// Messages returns the frames received from the server
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// Subscribe adds streams to the connection
func (c *Client) Subscribe(ctx context.Context, streams ...string) error {
	return c.send(ctx, Message{Event: EventSubscribe, Streams: streams})
}

// Unsubscribe removes streams from the connection
func (c *Client) Unsubscribe(ctx context.Context, streams ...string) error {
	return c.send(ctx, Message{Event: EventUnsubscribe, Streams: streams})
}

func (c *Client) send(ctx context.Context, msg Message) error {
	if len(msg.Streams) == 0 {
		return fmt.Errorf("no streams to %s", msg.Event)
	}

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("websocket not started")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to %s: %w", msg.Event, err)
	}

	c.logger.WithFields(logrus.Fields{
		"event":   msg.Event,
		"streams": msg.Streams,
	}).Debug("websocket streams updated")

	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()
	defer close(c.messages)

	for {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			if c.stopped() || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				c.logger.Info("websocket closed")
				return
			}
			c.logger.WithError(err).Warn("websocket read failed")
			return
		}

		select {
		case c.messages <- data:
		case <-c.stopChan:
			return
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn) {
	defer c.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := conn.Ping(ctx)
			cancel()

			if err != nil {
				if !c.stopped() && !errors.Is(err, context.Canceled) {
					c.logger.WithError(err).Warn("websocket ping failed")
				}
				return
			}
		}
	}
}

func (c *Client) stopped() bool {
	select {
	case <-c.stopChan:
		return true
	default:
		return false
	}
}
