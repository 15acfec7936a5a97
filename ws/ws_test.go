package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/banky/go-tanx/constants"
	"github.com/banky/go-tanx/types"
	"github.com/coder/websocket"
	"github.com/maxatome/go-testdeep/helpers/tdsuite"
	"github.com/maxatome/go-testdeep/td"
	"github.com/sirupsen/logrus/hooks/test"
)

// ===== Suite wiring =====

type WSSuite struct{}

func TestWSSuite(t *testing.T) {
	tdsuite.Run(t, &WSSuite{})
}

// ===== Mock server =====

// mockWSServer echoes every control frame back as a stream update and
// records the request URL of each connection
type mockWSServer struct {
	*httptest.Server

	requests chan *http.Request
	frames   chan Message
}

func newMockWSServer(t testing.TB) *mockWSServer {
	s := &mockWSServer{
		requests: make(chan *http.Request, 4),
		frames:   make(chan Message, 16),
	}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests <- r

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Logf("websocket accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "test complete")

		for {
			_, data, err := conn.Read(context.Background())
			if err != nil {
				return
			}

			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			s.frames <- msg

			if msg.Event != EventSubscribe {
				continue
			}
			for _, stream := range msg.Streams {
				update, _ := json.Marshal(map[string]any{
					"stream": stream,
					"data":   map[string]any{"price": "65000"},
				})
				_ = conn.Write(context.Background(), websocket.MessageText, update)
			}
		}
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *mockWSServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func newTestClient(t testing.TB, cfg Config) *Client {
	logger, _ := test.NewNullLogger()
	cfg.Logger = logger

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func receive(t *td.T, c *Client) map[string]any {
	select {
	case data, ok := <-c.Messages():
		t.Require().True(ok, "messages channel closed")

		var msg map[string]any
		t.Require().CmpNoError(json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

// ===== Configuration =====

func (s *WSSuite) TestEndpoints(assert, require *td.T) {
	public := newTestClient(assert, Config{Environment: types.Testnet})
	assert.Cmp(public.url, constants.TESTNET_WS_URL+"/public")

	mainnet := newTestClient(assert, Config{})
	assert.Cmp(mainnet.url, constants.MAINNET_WS_URL+"/public")

	private := newTestClient(assert, Config{
		URL:         "ws://localhost:9000/",
		Private:     true,
		AccessToken: "access-1",
	})
	assert.Cmp(private.url, "ws://localhost:9000/private?auth_header=access-1")
}

func (s *WSSuite) TestPrivateRequiresToken(assert, require *td.T) {
	_, err := New(Config{Environment: types.Testnet, Private: true})
	assert.Cmp(err, td.Isa((*types.AuthenticationError)(nil)))

	_, err = New(Config{Environment: "devnet"})
	assert.CmpError(err)
}

func (s *WSSuite) TestStreamNames(assert, require *td.T) {
	assert.Cmp(TradesStream("BTCUSDC"), "btcusdc.trades")
	assert.Cmp(OrderBookStream("ethusdc"), "ethusdc.ob-inc")
	assert.Cmp(KlineStream("ethusdc", "5m"), "ethusdc.kline-5m")
}

// ===== Connection =====

func (s *WSSuite) TestSubscribeFraming(assert, require *td.T) {
	server := newMockWSServer(assert)
	c := newTestClient(assert, Config{URL: server.wsURL()})

	ctx := context.Background()
	require.CmpNoError(c.Start(ctx))
	defer c.Stop()

	r := <-server.requests
	assert.Cmp(r.URL.Path, "/public")

	streams := []string{TradesStream("btcusdc"), OrderBookStream("btcusdc")}
	require.CmpNoError(c.Subscribe(ctx, streams...))

	frame := <-server.frames
	assert.Cmp(frame, Message{Event: EventSubscribe, Streams: streams})

	first := receive(assert, c)
	assert.Cmp(first["stream"], "btcusdc.trades")

	second := receive(assert, c)
	assert.Cmp(second["stream"], "btcusdc.ob-inc")

	require.CmpNoError(c.Unsubscribe(ctx, TradesStream("btcusdc")))

	frame = <-server.frames
	assert.Cmp(frame, Message{Event: EventUnsubscribe, Streams: []string{"btcusdc.trades"}})
}

func (s *WSSuite) TestPrivateConnectionSendsToken(assert, require *td.T) {
	server := newMockWSServer(assert)
	c := newTestClient(assert, Config{
		URL:         server.wsURL(),
		Private:     true,
		AccessToken: "header.payload.signature",
	})

	require.CmpNoError(c.Start(context.Background()))
	defer c.Stop()

	r := <-server.requests
	assert.Cmp(r.URL.Path, "/private")
	assert.Cmp(r.URL.Query().Get("auth_header"), "header.payload.signature")
}

func (s *WSSuite) TestStartTwice(assert, require *td.T) {
	server := newMockWSServer(assert)
	c := newTestClient(assert, Config{URL: server.wsURL()})

	require.CmpNoError(c.Start(context.Background()))
	assert.CmpError(c.Start(context.Background()))

	c.Stop()
	assert.CmpError(c.Start(context.Background()), "restart after stop")

	// only the first Start reached the server
	assert.Cmp(len(server.requests), 1)
}

func (s *WSSuite) TestSubscribeBeforeStart(assert, require *td.T) {
	c := newTestClient(assert, Config{URL: "ws://localhost:1"})

	assert.CmpError(c.Subscribe(context.Background(), "btcusdc.trades"))
}

func (s *WSSuite) TestSubscribeWithoutStreams(assert, require *td.T) {
	server := newMockWSServer(assert)
	c := newTestClient(assert, Config{URL: server.wsURL()})

	require.CmpNoError(c.Start(context.Background()))
	defer c.Stop()

	assert.CmpError(c.Subscribe(context.Background()))
}

func (s *WSSuite) TestStopClosesMessages(assert, require *td.T) {
	server := newMockWSServer(assert)
	c := newTestClient(assert, Config{URL: server.wsURL()})

	require.CmpNoError(c.Start(context.Background()))
	c.Stop()

	select {
	case _, ok := <-c.Messages():
		assert.False(ok)
	case <-time.After(2 * time.Second):
		assert.Fatal("messages channel not closed")
	}

	// stopping twice is harmless
	c.Stop()
}
