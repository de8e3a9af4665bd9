package server

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"trade-bridge/src/freshness"
	"trade-bridge/src/gate"
	"trade-bridge/src/logger"
	"trade-bridge/src/models"
)

// -----------------------------------------------------------------------------
// Test doubles
// -----------------------------------------------------------------------------

type routerSource struct {
	mu        sync.Mutex
	submitted []models.MOrderRequest
}

func (s *routerSource) Name() string { return "router-test" }

func (s *routerSource) GetAccount(ctx context.Context) (models.MAccountSnapshot, error) {
	return models.MAccountSnapshot{Balance: 10000}, nil
}

func (s *routerSource) GetTick(ctx context.Context, symbol string) (models.MTickSample, error) {
	return models.MTickSample{Symbol: symbol, Bid: 2385.40, Ask: 2385.90, CapturedAt: time.Now()}, nil
}

func (s *routerSource) GetSymbolInfo(ctx context.Context, symbol string) (models.MSymbolInfo, error) {
	return models.MSymbolInfo{Symbol: symbol, Point: 0.01, MinLot: 0.01, MaxLot: 100}, nil
}

func (s *routerSource) GetCandles(ctx context.Context, symbol, timeframe string, count int) ([]models.MCandle, error) {
	return nil, nil
}

func (s *routerSource) SubmitOrder(ctx context.Context, req models.MOrderRequest) (models.MOrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, req)
	return models.MOrderResult{Accepted: true, Ticket: 555001, FilledPrice: req.ReferencePrice}, nil
}

func (s *routerSource) SubmitCommand(ctx context.Context, name string, params map[string]string) error {
	return nil
}

func (s *routerSource) Close() error { return nil }

// -----------------------------------------------------------------------------

// memStore keeps saved parameter sets in a map.
type memStore struct {
	mu    sync.Mutex
	saved map[string]models.MTradingParameters
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string]models.MTradingParameters)}
}

func (m *memStore) Initialize() error { return nil }

func (m *memStore) Load(account string) (models.MTradingParameters, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.saved[account]
	return p, ok, nil
}

func (m *memStore) Save(account string, params models.MTradingParameters) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[account] = params
	return nil
}

func (m *memStore) Close() error { return nil }

// -----------------------------------------------------------------------------

func newTestRouter(source *routerSource, store *memStore) *CommandRouter {
	monitor := freshness.NewMonitor(time.Minute, nil)
	monitor.MarkSuccess()

	params := gate.NewParamStore(models.DefaultTradingParameters())
	g := gate.NewGate(source, monitor, params, nil, nil)

	return NewCommandRouter(g, store, "12345678", "XAUUSD",
		logger.NewLogger("error", "RouterTest"))
}

// testSession builds a session with no connection behind it. Deliver only
// touches the queue, so the router can be exercised without a websocket.
func testSession(id string) *Session {
	return newSession(id, nil, nil, 8)
}

func nextMessage(t *testing.T, s *Session) interface{} {
	t.Helper()
	select {
	case msg := <-s.send:
		return msg
	default:
		t.Fatal("Expected a delivered message, queue is empty")
		return nil
	}
}

func rawCommand(t *testing.T, cmd models.MClientCommand) []byte {
	t.Helper()
	raw, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("Failed to marshal command: %v", err)
	}
	return raw
}

// -----------------------------------------------------------------------------

func TestSubscribeSetsSessionScope(t *testing.T) {
	r := newTestRouter(&routerSource{}, newMemStore())
	s := testSession("s1")

	r.Handle(s, rawCommand(t, models.MClientCommand{
		Type: models.CmdSubscribe, Symbol: "EURUSD", Timeframe: "M15",
	}))

	symbol, timeframe := s.Subscription()
	if symbol != "EURUSD" || timeframe != "M15" {
		t.Errorf("Expected EURUSD M15, got %s %s", symbol, timeframe)
	}

	ack, ok := nextMessage(t, s).(models.MCommandResult)
	if !ok || !ack.Success || ack.Command != models.CmdSubscribe {
		t.Errorf("Unexpected ack: %+v", ack)
	}
}

func TestSubscribeDefaultsToBridgeSymbol(t *testing.T) {
	r := newTestRouter(&routerSource{}, newMemStore())
	s := testSession("s1")

	r.Handle(s, rawCommand(t, models.MClientCommand{Type: models.CmdSubscribe, Timeframe: "M5"}))

	symbol, _ := s.Subscription()
	if symbol != "XAUUSD" {
		t.Errorf("Expected the bridge symbol, got %s", symbol)
	}
}

func TestStartStopTradingPersists(t *testing.T) {
	store := newMemStore()
	r := newTestRouter(&routerSource{}, store)
	s := testSession("s1")

	r.Handle(s, rawCommand(t, models.MClientCommand{Type: models.CmdStartTrading}))
	if !r.gate.Params().Get().StrategyEnabled {
		t.Error("Expected strategy enabled after start_trading")
	}
	if saved, ok, _ := store.Load("12345678"); !ok || !saved.StrategyEnabled {
		t.Error("Expected enabled state to be persisted")
	}
	nextMessage(t, s)

	r.Handle(s, rawCommand(t, models.MClientCommand{Type: models.CmdStopTrading}))
	if r.gate.Params().Get().StrategyEnabled {
		t.Error("Expected strategy disabled after stop_trading")
	}
}

func TestUpdateParametersRejectsInvalidSet(t *testing.T) {
	store := newMemStore()
	r := newTestRouter(&routerSource{}, store)
	s := testSession("s1")

	bad := models.DefaultTradingParameters()
	bad.MaxDailyTrades = 0

	r.Handle(s, rawCommand(t, models.MClientCommand{
		Type: models.CmdUpdateParameters, Parameters: &bad,
	}))

	ack := nextMessage(t, s).(models.MCommandResult)
	if ack.Success {
		t.Error("Expected rejection of an invalid parameter set")
	}
	if _, ok, _ := store.Load("12345678"); ok {
		t.Error("Rejected parameters must not be persisted")
	}
}

func TestPlaceOrderFillsDefaultsAndAnswersRequester(t *testing.T) {
	source := &routerSource{}
	r := newTestRouter(source, newMemStore())
	s := testSession("s1")

	r.Handle(s, rawCommand(t, models.MClientCommand{
		Type: models.CmdPlaceOrder, Side: "buy",
	}))

	result, ok := nextMessage(t, s).(models.MOrderResultMessage)
	if !ok {
		t.Fatal("Expected an order result message")
	}
	if !result.Accepted || result.Ticket != 555001 {
		t.Errorf("Unexpected result: %+v", result)
	}

	source.mu.Lock()
	defer source.mu.Unlock()
	if len(source.submitted) != 1 {
		t.Fatalf("Expected one submission, got %d", len(source.submitted))
	}
	req := source.submitted[0]
	defaults := models.DefaultTradingParameters()
	if req.Symbol != "XAUUSD" || req.Side != models.SideBuy {
		t.Errorf("Unexpected request: %+v", req)
	}
	if req.Volume != defaults.LotSize || req.StopLossPips != defaults.StopLossPips {
		t.Errorf("Expected configured defaults on the request, got %+v", req)
	}
}

func TestMalformedAndUnknownCommands(t *testing.T) {
	r := newTestRouter(&routerSource{}, newMemStore())
	s := testSession("s1")

	r.Handle(s, []byte("{not json"))
	ack := nextMessage(t, s).(models.MCommandResult)
	if ack.Success {
		t.Error("Malformed input must not succeed")
	}

	r.Handle(s, rawCommand(t, models.MClientCommand{Type: "self_destruct"}))
	ack = nextMessage(t, s).(models.MCommandResult)
	if ack.Success || ack.Command != "self_destruct" {
		t.Errorf("Unexpected ack for unknown command: %+v", ack)
	}
}
