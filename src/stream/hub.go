package stream

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"trade-bridge/src/brokererr"
	"trade-bridge/src/freshness"
	"trade-bridge/src/interfaces"
	"trade-bridge/src/logger"
	"trade-bridge/src/models"
)

// -----------------------------------------------------------------------------
// Hub polls the broker source on a dedicated goroutine and fans the results
// out to every registered subscriber. Fetches run off the loop goroutine and
// are skipped while a previous one is still in flight, so a hung broker call
// never delays the next scheduled iteration: the abandoned call is logged and
// polling resumes.
//
// Delivery is best-effort per subscriber. Deliver must never block; slow
// consumers keep only the newest value.
// -----------------------------------------------------------------------------

// Subscriber is one attached client session.
type Subscriber interface {
	ID() string
	Subscription() (symbol, timeframe string)
	// Deliver enqueues msg without blocking, dropping the oldest queued
	// item when the subscriber is slow.
	Deliver(msg interface{})
}

// -----------------------------------------------------------------------------

const (
	defaultTickInterval    = 1 * time.Second
	defaultAccountInterval = 5 * time.Second
	defaultCandleInterval  = 5 * time.Second
)

type Hub struct {
	Logger *logger.Logger

	source  interfaces.IBrokerSource
	monitor *freshness.Monitor

	symbol    string
	timeframe string

	tickInterval    time.Duration
	accountInterval time.Duration
	candleInterval  time.Duration
	fetchTimeout    time.Duration

	register   chan Subscriber
	unregister chan Subscriber
	updates    chan interface{}
	candles    chan []models.MCandle
	sessions   map[string]Subscriber

	tickInFlight    atomic.Bool
	accountInFlight atomic.Bool
	candleInFlight  atomic.Bool

	// last observed values, owned by the run loop
	lastTick    *models.MTickSample
	lastAccount *models.MAccountSnapshot
	lastOpen    time.Time

	candlesUnsupported atomic.Bool
	onCandleClose      func(models.MCandle)
}

// -----------------------------------------------------------------------------

func NewHub(source interfaces.IBrokerSource, monitor *freshness.Monitor, cfg models.MStreamConfig, symbol, timeframe string, fetchTimeout time.Duration, log *logger.Logger) *Hub {
	h := &Hub{
		Logger:          log,
		source:          source,
		monitor:         monitor,
		symbol:          symbol,
		timeframe:       timeframe,
		tickInterval:    time.Duration(cfg.TickIntervalSeconds) * time.Second,
		accountInterval: time.Duration(cfg.AccountIntervalSeconds) * time.Second,
		candleInterval:  time.Duration(cfg.CandleIntervalSeconds) * time.Second,
		fetchTimeout:    fetchTimeout,
		register:        make(chan Subscriber),
		unregister:      make(chan Subscriber),
		updates:         make(chan interface{}, 64),
		candles:         make(chan []models.MCandle, 8),
		sessions:        make(map[string]Subscriber),
	}

	if h.tickInterval <= 0 {
		h.tickInterval = defaultTickInterval
	}
	if h.accountInterval <= 0 {
		h.accountInterval = defaultAccountInterval
	}
	if h.candleInterval <= 0 {
		h.candleInterval = defaultCandleInterval
	}
	if h.fetchTimeout <= 0 {
		h.fetchTimeout = 5 * time.Second
	}
	return h
}

// -----------------------------------------------------------------------------

// SetCandleCloseHandler installs a hook invoked on the run loop whenever a
// bar closes. Must be called before Run.
func (h *Hub) SetCandleCloseHandler(fn func(models.MCandle)) {
	h.onCandleClose = fn
}

// -----------------------------------------------------------------------------

// State exposes the current connectivity snapshot.
func (h *Hub) State() models.MConnectivitySnapshot {
	return h.monitor.State()
}

// -----------------------------------------------------------------------------

// Register attaches a subscriber to the fanout set.
func (h *Hub) Register(sub Subscriber) {
	h.register <- sub
}

// Unregister detaches a subscriber. Safe to call for unknown subscribers.
func (h *Hub) Unregister(sub Subscriber) {
	h.unregister <- sub
}

// -----------------------------------------------------------------------------

// Run is the hub loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	h.monitor.MarkHandshake()

	tickTicker := time.NewTicker(h.tickInterval)
	accountTicker := time.NewTicker(h.accountInterval)
	candleTicker := time.NewTicker(h.candleInterval)
	defer tickTicker.Stop()
	defer accountTicker.Stop()
	defer candleTicker.Stop()

	// Prime the account snapshot so the first status update is complete.
	h.spawnAccountFetch(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-h.register:
			h.sessions[sub.ID()] = sub
			// New sessions get the latest known state immediately.
			if h.lastTick != nil || h.lastAccount != nil {
				sub.Deliver(h.statusUpdate())
			}

		case sub := <-h.unregister:
			delete(h.sessions, sub.ID())

		case <-tickTicker.C:
			h.spawnTickFetch(ctx)

		case <-accountTicker.C:
			h.spawnAccountFetch(ctx)

		case <-candleTicker.C:
			h.spawnCandleFetch(ctx)

		case msg := <-h.updates:
			switch v := msg.(type) {
			case models.MTickSample:
				h.lastTick = &v
			case models.MAccountSnapshot:
				h.lastAccount = &v
			}
			h.broadcastStatus()

		case bars := <-h.candles:
			h.handleCandles(bars)
		}
	}
}

// -----------------------------------------------------------------------------
// Fetching
// -----------------------------------------------------------------------------

func (h *Hub) spawnTickFetch(ctx context.Context) {
	if !h.tickInFlight.CompareAndSwap(false, true) {
		if h.Logger != nil {
			h.Logger.Warning("Tick fetch still in flight, skipping iteration")
		}
		return
	}

	go func() {
		defer h.tickInFlight.Store(false)

		fetchCtx, cancel := context.WithTimeout(ctx, h.fetchTimeout)
		defer cancel()

		tick, err := h.source.GetTick(fetchCtx, h.symbol)
		if err != nil {
			h.monitor.MarkFailure()
			if h.Logger != nil {
				h.Logger.Debug("Tick fetch failed: %v", err)
			}
			// Broadcast the state change anyway so clients see degradation.
			h.pushUpdate(nil)
			return
		}

		h.monitor.MarkSuccess()
		h.pushUpdate(tick)
	}()
}

// -----------------------------------------------------------------------------

func (h *Hub) spawnAccountFetch(ctx context.Context) {
	if !h.accountInFlight.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer h.accountInFlight.Store(false)

		fetchCtx, cancel := context.WithTimeout(ctx, h.fetchTimeout)
		defer cancel()

		account, err := h.source.GetAccount(fetchCtx)
		if err != nil {
			h.monitor.MarkFailure()
			if h.Logger != nil {
				h.Logger.Debug("Account fetch failed: %v", err)
			}
			return
		}

		h.monitor.MarkSuccess()
		h.pushUpdate(account)
	}()
}

// -----------------------------------------------------------------------------

func (h *Hub) spawnCandleFetch(ctx context.Context) {
	if h.candlesUnsupported.Load() {
		return
	}
	if !h.candleInFlight.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer h.candleInFlight.Store(false)

		fetchCtx, cancel := context.WithTimeout(ctx, h.fetchTimeout)
		defer cancel()

		bars, err := h.source.GetCandles(fetchCtx, h.symbol, h.timeframe, 2)
		if err != nil {
			if errors.Is(err, brokererr.ErrUnsupported) {
				h.candlesUnsupported.Store(true)
				if h.Logger != nil {
					h.Logger.Info("Source %s carries no bar history, candle polling disabled", h.source.Name())
				}
				return
			}
			if h.Logger != nil {
				h.Logger.Debug("Candle fetch failed: %v", err)
			}
			return
		}
		if len(bars) == 0 {
			return
		}

		select {
		case h.candles <- bars:
		default:
		}
	}()
}

// -----------------------------------------------------------------------------

// pushUpdate hands a fetched value to the run loop without ever blocking the
// fetch goroutine.
func (h *Hub) pushUpdate(v interface{}) {
	if v == nil {
		v = struct{}{} // state-only refresh
	}
	select {
	case h.updates <- v:
	default:
	}
}

// -----------------------------------------------------------------------------
// Fanout
// -----------------------------------------------------------------------------

func (h *Hub) statusUpdate() models.MStatusUpdate {
	return models.MStatusUpdate{
		Type:    models.MsgAccountStatus,
		Account: h.lastAccount,
		Tick:    h.lastTick,
		State:   h.monitor.State().State,
	}
}

// -----------------------------------------------------------------------------

func (h *Hub) broadcastStatus() {
	update := h.statusUpdate()
	for _, sub := range h.sessions {
		sub.Deliver(update)
	}
}

// -----------------------------------------------------------------------------

// handleCandles tracks the forming bar and emits a close event once a new
// bar opens. The closed bar is the one whose OpenTime we were tracking,
// carried in the same fetch. Only sessions subscribed to the matching symbol
// and timeframe receive it.
func (h *Hub) handleCandles(bars []models.MCandle) {
	newest := bars[len(bars)-1]
	if h.lastOpen.IsZero() {
		h.lastOpen = newest.OpenTime
		return
	}
	if !newest.OpenTime.After(h.lastOpen) {
		return
	}

	closedBar := bars[0]
	for _, b := range bars {
		if b.OpenTime.Equal(h.lastOpen) {
			closedBar = b
			break
		}
	}
	h.lastOpen = newest.OpenTime

	event := models.MCandleClose{
		Type:   models.MsgCandleClose,
		Symbol: h.symbol,
		Candle: closedBar,
	}
	for _, sub := range h.sessions {
		sym, tf := sub.Subscription()
		if sym == h.symbol && tf == h.timeframe {
			sub.Deliver(event)
		}
	}

	if h.onCandleClose != nil {
		h.onCandleClose(closedBar)
	}
}
