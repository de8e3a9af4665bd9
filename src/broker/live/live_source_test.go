package live

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trade-bridge/src/brokererr"
	"trade-bridge/src/models"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// startTerminal runs a fake terminal agent that answers via handle. A nil
// return from handle means "stay silent" (used for timeout tests).
func startTerminal(t *testing.T, secret string, handle func(req terminalRequest) *terminalResponse) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if secret != "" && r.Header.Get("X-Bridge-Secret") != secret {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var req terminalRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			resp := handle(req)
			if resp == nil {
				continue
			}
			resp.ID = req.ID
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestGetTickRoundTrip(t *testing.T) {
	srv := startTerminal(t, "s3cret", func(req terminalRequest) *terminalResponse {
		if req.Command != "get_tick" || req.Symbol != "XAUUSD" {
			t.Errorf("Unexpected request: %+v", req)
		}
		return &terminalResponse{
			Type: "tick",
			Tick: &struct {
				Symbol string  `json:"symbol"`
				Bid    float64 `json:"bid"`
				Ask    float64 `json:"ask"`
				Time   int64   `json:"time"`
			}{Symbol: "XAUUSD", Bid: 2385.40, Ask: 2385.90, Time: time.Now().Unix()},
		}
	})

	s := NewLiveSource(wsURL(srv), "s3cret", 2*time.Second, nil)
	defer s.Close()

	tick, err := s.GetTick(context.Background(), "XAUUSD")
	if err != nil {
		t.Fatalf("GetTick failed: %v", err)
	}
	if tick.Bid != 2385.40 || tick.Ask != 2385.90 {
		t.Errorf("Unexpected tick: %+v", tick)
	}
}

func TestWrongSecretIsUnavailable(t *testing.T) {
	srv := startTerminal(t, "s3cret", func(req terminalRequest) *terminalResponse { return nil })

	s := NewLiveSource(wsURL(srv), "wrong", 500*time.Millisecond, nil)
	defer s.Close()

	_, err := s.GetTick(context.Background(), "XAUUSD")
	if !errors.Is(err, brokererr.ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestSilentTerminalTimesOut(t *testing.T) {
	srv := startTerminal(t, "", func(req terminalRequest) *terminalResponse { return nil })

	s := NewLiveSource(wsURL(srv), "", 200*time.Millisecond, nil)
	defer s.Close()

	_, err := s.GetTick(context.Background(), "XAUUSD")
	if !errors.Is(err, brokererr.ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
}

func TestLostOrderResponseIsAmbiguous(t *testing.T) {
	srv := startTerminal(t, "", func(req terminalRequest) *terminalResponse {
		if req.Command == "place_order" {
			return nil // swallow the response
		}
		return &terminalResponse{Type: "ack"}
	})

	s := NewLiveSource(wsURL(srv), "", 200*time.Millisecond, nil)
	defer s.Close()

	_, err := s.SubmitOrder(context.Background(), models.MOrderRequest{
		ID:     "req-1",
		Side:   models.SideBuy,
		Symbol: "XAUUSD",
		Volume: 0.01,
	})
	if !errors.Is(err, brokererr.ErrAmbiguous) {
		t.Errorf("Expected ErrAmbiguous for lost order response, got %v", err)
	}
}

func TestUnsentOrderIsNotAmbiguous(t *testing.T) {
	// Nothing listens here: the dial fails and the order never leaves the
	// process, so the caller must be free to retry.
	s := NewLiveSource("ws://127.0.0.1:1/ws", "", 200*time.Millisecond, nil)
	defer s.Close()

	_, err := s.SubmitOrder(context.Background(), models.MOrderRequest{
		ID:     "req-1",
		Side:   models.SideBuy,
		Symbol: "XAUUSD",
		Volume: 0.01,
	})
	if errors.Is(err, brokererr.ErrAmbiguous) {
		t.Errorf("Order that never reached the wire must not be ambiguous, got %v", err)
	}
	if !errors.Is(err, brokererr.ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable for a failed dial, got %v", err)
	}
}

func TestOrderRejectionCarriesReason(t *testing.T) {
	srv := startTerminal(t, "", func(req terminalRequest) *terminalResponse {
		return &terminalResponse{
			Type: "order_result",
			Order: &struct {
				Accepted    bool    `json:"accepted"`
				Ticket      int64   `json:"ticket"`
				Reason      string  `json:"reason,omitempty"`
				FilledPrice float64 `json:"filled_price,omitempty"`
			}{Accepted: false, Reason: "NOT_ENOUGH_MONEY"},
		}
	})

	s := NewLiveSource(wsURL(srv), "", 2*time.Second, nil)
	defer s.Close()

	res, err := s.SubmitOrder(context.Background(), models.MOrderRequest{
		Side: models.SideSell, Symbol: "XAUUSD", Volume: 0.01,
	})
	if err != nil {
		t.Fatalf("SubmitOrder failed: %v", err)
	}
	if res.Accepted {
		t.Error("Expected rejection")
	}
	if res.Reason != "NOT_ENOUGH_MONEY" {
		t.Errorf("Expected broker reason to pass through, got %q", res.Reason)
	}
}

func TestAcceptedOrderReturnsTicket(t *testing.T) {
	srv := startTerminal(t, "", func(req terminalRequest) *terminalResponse {
		return &terminalResponse{
			Type: "order_result",
			Order: &struct {
				Accepted    bool    `json:"accepted"`
				Ticket      int64   `json:"ticket"`
				Reason      string  `json:"reason,omitempty"`
				FilledPrice float64 `json:"filled_price,omitempty"`
			}{Accepted: true, Ticket: 42, FilledPrice: 2385.90},
		}
	})

	s := NewLiveSource(wsURL(srv), "", 2*time.Second, nil)
	defer s.Close()

	res, err := s.SubmitOrder(context.Background(), models.MOrderRequest{
		Side: models.SideBuy, Symbol: "XAUUSD", Volume: 0.01,
	})
	if err != nil {
		t.Fatalf("SubmitOrder failed: %v", err)
	}
	if !res.Accepted || res.Ticket != 42 || res.FilledPrice != 2385.90 {
		t.Errorf("Unexpected result: %+v", res)
	}
}
