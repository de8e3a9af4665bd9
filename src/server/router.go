package server

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"trade-bridge/src/brokererr"
	"trade-bridge/src/gate"
	"trade-bridge/src/interfaces"
	"trade-bridge/src/logger"
	"trade-bridge/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// CommandRouter maps inbound session commands to gate calls and parameter
// mutations. Results go back only to the requesting session, never broadcast.
// -----------------------------------------------------------------------------

const commandTimeout = 15 * time.Second

type CommandRouter struct {
	Logger *logger.Logger

	gate    *gate.Gate
	store   interfaces.ISettingsStore
	account string
	symbol  string // instrument traded by this bridge instance
}

// -----------------------------------------------------------------------------

func NewCommandRouter(g *gate.Gate, store interfaces.ISettingsStore, account, symbol string, log *logger.Logger) *CommandRouter {
	return &CommandRouter{
		Logger:  log,
		gate:    g,
		store:   store,
		account: account,
		symbol:  symbol,
	}
}

// -----------------------------------------------------------------------------

// Handle processes one raw inbound message from a session.
func (r *CommandRouter) Handle(session *Session, raw []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		r.Logger.Info("Failed to parse command from session %s: %v", session.ID(), err)
		session.Deliver(models.MCommandResult{
			Type: models.MsgCommandResult, Command: "unknown",
			Success: false, Message: "malformed command",
		})
		return
	}

	switch cmd.Type {
	case models.CmdSubscribe:
		r.handleSubscribe(session, cmd)
	case models.CmdStartTrading:
		r.handleStrategyToggle(session, cmd.Type, true)
	case models.CmdStopTrading:
		r.handleStrategyToggle(session, cmd.Type, false)
	case models.CmdUpdateParameters:
		r.handleUpdateParameters(session, cmd)
	case models.CmdPlaceOrder:
		r.handlePlaceOrder(session, cmd)
	default:
		session.Deliver(models.MCommandResult{
			Type: models.MsgCommandResult, Command: cmd.Type,
			Success: false, Message: "unknown command type",
		})
	}
}

// -----------------------------------------------------------------------------

func (r *CommandRouter) handleSubscribe(session *Session, cmd models.MClientCommand) {
	symbol := cmd.Symbol
	if symbol == "" {
		symbol = r.symbol
	}
	timeframe := cmd.Timeframe

	session.setSubscription(symbol, timeframe)
	r.Logger.Info("Session %s subscribed to %s %s", session.ID(), symbol, timeframe)

	session.Deliver(models.MCommandResult{
		Type: models.MsgCommandResult, Command: models.CmdSubscribe, Success: true,
	})
}

// -----------------------------------------------------------------------------

func (r *CommandRouter) handleStrategyToggle(session *Session, command string, enabled bool) {
	r.gate.Params().SetStrategyEnabled(enabled)
	r.persist()

	verb := "disabled"
	if enabled {
		verb = "enabled"
	}
	r.Logger.Info("Strategy %s by session %s", verb, session.ID())
	session.Deliver(models.MCommandResult{
		Type: models.MsgCommandResult, Command: command, Success: true,
	})
}

// -----------------------------------------------------------------------------

func (r *CommandRouter) handleUpdateParameters(session *Session, cmd models.MClientCommand) {
	if cmd.Parameters == nil {
		session.Deliver(models.MCommandResult{
			Type: models.MsgCommandResult, Command: models.CmdUpdateParameters,
			Success: false, Message: "missing parameters payload",
		})
		return
	}

	if err := r.gate.Params().Set(*cmd.Parameters); err != nil {
		session.Deliver(models.MCommandResult{
			Type: models.MsgCommandResult, Command: models.CmdUpdateParameters,
			Success: false, Message: err.Error(),
		})
		return
	}
	r.persist()

	r.Logger.Info("Trading parameters updated by session %s", session.ID())
	session.Deliver(models.MCommandResult{
		Type: models.MsgCommandResult, Command: models.CmdUpdateParameters, Success: true,
	})
}

// -----------------------------------------------------------------------------

func (r *CommandRouter) handlePlaceOrder(session *Session, cmd models.MClientCommand) {
	params := r.gate.Params().Get()

	req := models.MOrderRequest{
		ID:             uuid.New().String(),
		Side:           models.OrderSide(strings.ToUpper(cmd.Side)),
		Symbol:         cmd.Symbol,
		Volume:         cmd.Volume,
		StopLossPips:   cmd.StopLossPips,
		TakeProfitPips: cmd.TakeProfitPips,
		Comment:        cmd.Comment,
	}
	if req.Symbol == "" {
		req.Symbol = r.symbol
	}
	if req.Volume == 0 {
		req.Volume = params.LotSize
	}
	if req.StopLossPips == 0 {
		req.StopLossPips = params.StopLossPips
	}
	if req.TakeProfitPips == 0 {
		req.TakeProfitPips = params.TakeProfitPips
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	result, err := r.gate.Submit(ctx, req)
	if err != nil {
		session.Deliver(models.MOrderResultMessage{
			Type:      models.MsgOrderResult,
			RequestID: req.ID,
			Accepted:  false,
			Reason:    brokererr.Reason(err),
		})
		return
	}

	session.Deliver(models.MOrderResultMessage{
		Type:        models.MsgOrderResult,
		RequestID:   req.ID,
		Accepted:    result.Accepted,
		Ticket:      result.Ticket,
		Reason:      result.Reason,
		FilledPrice: result.FilledPrice,
	})
}

// -----------------------------------------------------------------------------

// persist writes the current parameter set through the settings store so a
// restart resumes from the same configuration.
func (r *CommandRouter) persist() {
	if r.store == nil {
		return
	}
	if err := r.store.Save(r.account, r.gate.Params().Get()); err != nil {
		r.Logger.Error("Failed to persist trading parameters: %v", err)
	}
}
