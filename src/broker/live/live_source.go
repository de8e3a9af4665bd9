package live

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"trade-bridge/src/brokererr"
	"trade-bridge/src/logger"
	"trade-bridge/src/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// LiveSource talks to a broker terminal agent over a persistent websocket.
// Every call is a correlated request/response pair: the request carries a
// fresh id, the read loop routes the matching response back by id. Requests
// that outlive the per-call timeout fail with ErrTimeout, except order
// submissions, which fail with ErrAmbiguous because the terminal may have
// executed the order before the response was lost.
// -----------------------------------------------------------------------------

const (
	defaultRequestTimeout = 5 * time.Second
	dialRetries           = 3
	dialBackoff           = 500 * time.Millisecond
)

type LiveSource struct {
	Logger *logger.Logger

	url     string
	secret  string
	timeout time.Duration

	connMu sync.Mutex // serializes dial/teardown and writes
	conn   *websocket.Conn

	pendingMu sync.Mutex
	pending   map[string]chan terminalResponse

	closed bool
}

// -----------------------------------------------------------------------------
// Wire Contract
// -----------------------------------------------------------------------------

type terminalRequest struct {
	ID        string            `json:"id"`
	Command   string            `json:"command"`
	Symbol    string            `json:"symbol,omitempty"`
	Timeframe string            `json:"timeframe,omitempty"`
	Count     int               `json:"count,omitempty"`
	Side      string            `json:"side,omitempty"`
	Volume    float64           `json:"volume,omitempty"`
	StopLoss  float64           `json:"sl,omitempty"`
	TakeProf  float64           `json:"tp,omitempty"`
	Comment   string            `json:"comment,omitempty"`
	Name      string            `json:"name,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
}

type terminalResponse struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`

	Account *struct {
		Login      string  `json:"login"`
		Balance    float64 `json:"balance"`
		Equity     float64 `json:"equity"`
		Margin     float64 `json:"margin"`
		FreeMargin float64 `json:"free_margin"`
		Profit     float64 `json:"profit"`
		Currency   string  `json:"currency"`
	} `json:"account,omitempty"`

	Tick *struct {
		Symbol string  `json:"symbol"`
		Bid    float64 `json:"bid"`
		Ask    float64 `json:"ask"`
		Time   int64   `json:"time"`
	} `json:"tick,omitempty"`

	SymbolInfo *struct {
		Symbol  string  `json:"symbol"`
		Point   float64 `json:"point"`
		Digits  int     `json:"digits"`
		MinLot  float64 `json:"min_lot"`
		MaxLot  float64 `json:"max_lot"`
		LotStep float64 `json:"lot_step"`
	} `json:"symbol_info,omitempty"`

	Candles []struct {
		Time  int64   `json:"time"`
		Open  float64 `json:"open"`
		High  float64 `json:"high"`
		Low   float64 `json:"low"`
		Close float64 `json:"close"`
	} `json:"candles,omitempty"`

	Order *struct {
		Accepted    bool    `json:"accepted"`
		Ticket      int64   `json:"ticket"`
		Reason      string  `json:"reason,omitempty"`
		FilledPrice float64 `json:"filled_price,omitempty"`
	} `json:"order,omitempty"`
}

// -----------------------------------------------------------------------------

func NewLiveSource(url, secret string, timeout time.Duration, log *logger.Logger) *LiveSource {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &LiveSource{
		Logger:  log,
		url:     url,
		secret:  secret,
		timeout: timeout,
		pending: make(map[string]chan terminalResponse),
	}
}

// -----------------------------------------------------------------------------

func (s *LiveSource) Name() string {
	return "live"
}

// -----------------------------------------------------------------------------

func (s *LiveSource) GetAccount(ctx context.Context) (models.MAccountSnapshot, error) {
	resp, err := s.request(ctx, terminalRequest{Command: "get_balance"}, s.timeout)
	if err != nil {
		return models.MAccountSnapshot{}, err
	}
	if resp.Account == nil {
		return models.MAccountSnapshot{}, fmt.Errorf("%w: response carried no account block", brokererr.ErrSourceUnavailable)
	}

	a := resp.Account
	return models.MAccountSnapshot{
		Login:      a.Login,
		Balance:    a.Balance,
		Equity:     a.Equity,
		Margin:     a.Margin,
		FreeMargin: a.FreeMargin,
		Profit:     a.Profit,
		Currency:   a.Currency,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// -----------------------------------------------------------------------------

func (s *LiveSource) GetTick(ctx context.Context, symbol string) (models.MTickSample, error) {
	resp, err := s.request(ctx, terminalRequest{Command: "get_tick", Symbol: symbol}, s.timeout)
	if err != nil {
		return models.MTickSample{}, err
	}
	if resp.Tick == nil {
		return models.MTickSample{}, fmt.Errorf("%w: response carried no tick block", brokererr.ErrSourceUnavailable)
	}

	capturedAt := time.Now().UTC()
	if resp.Tick.Time > 0 {
		capturedAt = time.Unix(resp.Tick.Time, 0).UTC()
	}
	return models.MTickSample{
		Symbol:     symbol,
		Bid:        resp.Tick.Bid,
		Ask:        resp.Tick.Ask,
		CapturedAt: capturedAt,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *LiveSource) GetSymbolInfo(ctx context.Context, symbol string) (models.MSymbolInfo, error) {
	resp, err := s.request(ctx, terminalRequest{Command: "get_symbol_info", Symbol: symbol}, s.timeout)
	if err != nil {
		return models.MSymbolInfo{}, err
	}
	if resp.SymbolInfo == nil {
		return models.MSymbolInfo{}, fmt.Errorf("%w: response carried no symbol_info block", brokererr.ErrSourceUnavailable)
	}

	i := resp.SymbolInfo
	return models.MSymbolInfo{
		Symbol:  symbol,
		Point:   i.Point,
		Digits:  i.Digits,
		MinLot:  i.MinLot,
		MaxLot:  i.MaxLot,
		LotStep: i.LotStep,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *LiveSource) GetCandles(ctx context.Context, symbol, timeframe string, count int) ([]models.MCandle, error) {
	resp, err := s.request(ctx, terminalRequest{
		Command:   "get_candles",
		Symbol:    symbol,
		Timeframe: timeframe,
		Count:     count,
	}, s.timeout)
	if err != nil {
		return nil, err
	}

	candles := make([]models.MCandle, 0, len(resp.Candles))
	for _, c := range resp.Candles {
		candles = append(candles, models.MCandle{
			OpenTime:  time.Unix(c.Time, 0).UTC(),
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Timeframe: timeframe,
		})
	}
	return candles, nil
}

// -----------------------------------------------------------------------------

// SubmitOrder sends a place_order request. A response lost after the request
// was written to the wire is reported as ErrAmbiguous: the terminal may have
// filled the order, so the caller must never resend. Failures before the
// write (no connection, dial refused) surface as-is and stay retryable.
func (s *LiveSource) SubmitOrder(ctx context.Context, req models.MOrderRequest) (models.MOrderResult, error) {
	resp, sent, err := s.exchange(ctx, terminalRequest{
		ID:       req.ID,
		Command:  "place_order",
		Symbol:   req.Symbol,
		Side:     string(req.Side),
		Volume:   req.Volume,
		StopLoss: req.StopLoss,
		TakeProf: req.TakeProfit,
		Comment:  req.Comment,
	}, s.timeout)
	if err != nil {
		if sent && brokererr.Retryable(err) {
			// The request reached the wire before the connection or
			// deadline broke; the terminal may have executed it.
			return models.MOrderResult{}, fmt.Errorf("%w: %v", brokererr.ErrAmbiguous, err)
		}
		return models.MOrderResult{}, err
	}
	if resp.Order == nil {
		return models.MOrderResult{}, fmt.Errorf("%w: response carried no order block", brokererr.ErrAmbiguous)
	}

	o := resp.Order
	reason := o.Reason
	if !o.Accepted && reason == "" {
		reason = models.ReasonBrokerRejected
	}
	return models.MOrderResult{
		Accepted:    o.Accepted,
		Ticket:      o.Ticket,
		Reason:      reason,
		FilledPrice: o.FilledPrice,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *LiveSource) SubmitCommand(ctx context.Context, name string, params map[string]string) error {
	_, err := s.request(ctx, terminalRequest{
		Command: "command",
		Name:    name,
		Params:  params,
	}, s.timeout)
	return err
}

// -----------------------------------------------------------------------------

func (s *LiveSource) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	s.closed = true
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.failPending()
	return nil
}

// -----------------------------------------------------------------------------
// Connection Management
// -----------------------------------------------------------------------------

// ensureConnected dials the terminal if no connection is up. Callers hold
// s.connMu.
func (s *LiveSource) ensureConnected() error {
	if s.closed {
		return brokererr.ErrSourceUnavailable
	}
	if s.conn != nil {
		return nil
	}

	header := http.Header{}
	if s.secret != "" {
		header.Set("X-Bridge-Secret", s.secret)
	}

	var conn *websocket.Conn
	err := brokererr.RetryWithBackoff(dialRetries, dialBackoff, func() error {
		c, _, dialErr := websocket.DefaultDialer.Dial(s.url, header)
		if dialErr != nil {
			return fmt.Errorf("%w: %v", brokererr.ErrSourceUnavailable, dialErr)
		}
		conn = c
		return nil
	})
	if err != nil {
		return err
	}

	s.conn = conn
	if s.Logger != nil {
		s.Logger.Info("Connected to terminal at %s", s.url)
	}
	go s.readLoop(conn)
	return nil
}

// -----------------------------------------------------------------------------

// readLoop routes responses to their waiting requests until the connection
// breaks, then fails everything in flight.
func (s *LiveSource) readLoop(conn *websocket.Conn) {
	for {
		var resp terminalResponse
		if err := conn.ReadJSON(&resp); err != nil {
			s.connMu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.connMu.Unlock()
			conn.Close()

			s.failPending()
			if s.Logger != nil {
				s.Logger.Warning("Terminal connection lost: %v", err)
			}
			return
		}

		s.pendingMu.Lock()
		ch, ok := s.pending[resp.ID]
		if ok {
			delete(s.pending, resp.ID)
		}
		s.pendingMu.Unlock()

		if ok {
			ch <- resp
		} else if s.Logger != nil {
			// Late response for a request that already timed out.
			s.Logger.Warning("Dropping unmatched terminal response (id=%s type=%s)", resp.ID, resp.Type)
		}
	}
}

// -----------------------------------------------------------------------------

// request sends one correlated request and waits for its response.
func (s *LiveSource) request(ctx context.Context, req terminalRequest, timeout time.Duration) (terminalResponse, error) {
	resp, _, err := s.exchange(ctx, req, timeout)
	return resp, err
}

// exchange additionally reports whether the request was written to the wire.
// A failure after a successful write may have reached the terminal; a failure
// before it cannot have.
func (s *LiveSource) exchange(ctx context.Context, req terminalRequest, timeout time.Duration) (terminalResponse, bool, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	ch := make(chan terminalResponse, 1)
	s.pendingMu.Lock()
	s.pending[req.ID] = ch
	s.pendingMu.Unlock()

	s.connMu.Lock()
	if err := s.ensureConnected(); err != nil {
		s.connMu.Unlock()
		s.unregister(req.ID)
		return terminalResponse{}, false, err
	}
	err := s.conn.WriteJSON(req)
	s.connMu.Unlock()

	if err != nil {
		s.unregister(req.ID)
		return terminalResponse{}, false, fmt.Errorf("%w: %v", brokererr.ErrSourceUnavailable, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			return terminalResponse{}, true, brokererr.ErrSourceUnavailable
		}
		if resp.Error != "" {
			return terminalResponse{}, true, fmt.Errorf("terminal error: %s", resp.Error)
		}
		return resp, true, nil
	case <-timer.C:
		s.unregister(req.ID)
		return terminalResponse{}, true, fmt.Errorf("%w: no response within %s", brokererr.ErrTimeout, timeout)
	case <-ctx.Done():
		s.unregister(req.ID)
		return terminalResponse{}, true, fmt.Errorf("%w: %v", brokererr.ErrTimeout, ctx.Err())
	}
}

// -----------------------------------------------------------------------------

func (s *LiveSource) unregister(id string) {
	s.pendingMu.Lock()
	delete(s.pending, id)
	s.pendingMu.Unlock()
}

// -----------------------------------------------------------------------------

// failPending closes every in-flight wait channel so waiters fall through to
// the closed-channel branch in request.
func (s *LiveSource) failPending() {
	s.pendingMu.Lock()
	for id, ch := range s.pending {
		close(ch)
		delete(s.pending, id)
	}
	s.pendingMu.Unlock()
}
