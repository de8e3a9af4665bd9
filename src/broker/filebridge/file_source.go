package filebridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"trade-bridge/src/brokererr"
	"trade-bridge/src/logger"
	"trade-bridge/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// FileSource reads broker state from a JSON file that an expert advisor (or
// the bridge API) rewrites on every update. Freshness comes from the file's
// mtime: a file older than maxAge means the writer stopped, and reads fail
// with ErrStaleData so the connectivity monitor degrades.
//
// The file channel is one-way. Orders cannot be confirmed synchronously, so
// SubmitOrder is unsupported; SubmitCommand appends to a command file the
// writer polls and acknowledges out of band.
// -----------------------------------------------------------------------------

type FileSource struct {
	Logger *logger.Logger

	path        string
	commandPath string
	maxAge      time.Duration

	mu     sync.Mutex
	closed bool
}

// -----------------------------------------------------------------------------

func NewFileSource(path, commandPath string, maxAge time.Duration, log *logger.Logger) *FileSource {
	if maxAge <= 0 {
		maxAge = 30 * time.Second
	}

	return &FileSource{
		Logger:      log,
		path:        path,
		commandPath: commandPath,
		maxAge:      maxAge,
	}
}

// -----------------------------------------------------------------------------

func (s *FileSource) Name() string {
	return "file"
}

// -----------------------------------------------------------------------------

func (s *FileSource) GetAccount(ctx context.Context) (models.MAccountSnapshot, error) {
	payload, capturedAt, err := s.readPayload()
	if err != nil {
		return models.MAccountSnapshot{}, err
	}

	return models.MAccountSnapshot{
		Login:      payload.Account.Login,
		Balance:    payload.Account.Balance,
		Equity:     payload.Account.Equity,
		Margin:     payload.Account.Margin,
		FreeMargin: payload.Account.Equity - payload.Account.Margin,
		Profit:     payload.Account.Profit,
		Currency:   payload.Account.Currency,
		CapturedAt: capturedAt,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *FileSource) GetTick(ctx context.Context, symbol string) (models.MTickSample, error) {
	payload, capturedAt, err := s.readPayload()
	if err != nil {
		return models.MTickSample{}, err
	}

	if payload.Tick.Symbol != "" && payload.Tick.Symbol != symbol {
		return models.MTickSample{}, fmt.Errorf("%w: bridge file carries %s, wanted %s",
			brokererr.ErrInvalidParameters, payload.Tick.Symbol, symbol)
	}

	if payload.Tick.Time > 0 {
		capturedAt = time.Unix(payload.Tick.Time, 0).UTC()
	}

	return models.MTickSample{
		Symbol:     symbol,
		Bid:        payload.Tick.Bid,
		Ask:        payload.Tick.Ask,
		CapturedAt: capturedAt,
	}, nil
}

// -----------------------------------------------------------------------------

// GetSymbolInfo returns fixed metals-style metadata. The bridge file format
// does not carry symbol specifications.
func (s *FileSource) GetSymbolInfo(ctx context.Context, symbol string) (models.MSymbolInfo, error) {
	return models.MSymbolInfo{
		Symbol:  symbol,
		Point:   0.01,
		Digits:  2,
		MinLot:  0.01,
		MaxLot:  100.0,
		LotStep: 0.01,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *FileSource) GetCandles(ctx context.Context, symbol, timeframe string, count int) ([]models.MCandle, error) {
	return nil, fmt.Errorf("%w: file bridge carries no bar history", brokererr.ErrUnsupported)
}

// -----------------------------------------------------------------------------

func (s *FileSource) SubmitOrder(ctx context.Context, req models.MOrderRequest) (models.MOrderResult, error) {
	return models.MOrderResult{}, fmt.Errorf("%w: file bridge cannot confirm orders", brokererr.ErrUnsupported)
}

// -----------------------------------------------------------------------------

// commandMu serializes every append to and drain of a command file. An
// append landing between a drain's scan and its truncate would otherwise be
// deleted without ever being served.
var commandMu sync.Mutex

// SubmitCommand appends one JSON line to the command file. The writer on the
// other side drains the file and executes the commands.
func (s *FileSource) SubmitCommand(ctx context.Context, name string, params map[string]string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return brokererr.ErrSourceUnavailable
	}
	if s.commandPath == "" {
		return fmt.Errorf("%w: no command path configured", brokererr.ErrUnsupported)
	}

	cmd := models.MBridgeCommand{
		ID:        uuid.New().String(),
		Name:      name,
		Params:    params,
		CreatedAt: time.Now().UTC().Unix(),
	}
	line, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}

	commandMu.Lock()
	defer commandMu.Unlock()

	f, err := os.OpenFile(s.commandPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", brokererr.ErrSourceUnavailable, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append command: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Info("Queued bridge command: %s", name)
	}
	return nil
}

// -----------------------------------------------------------------------------

// DrainCommands reads and removes every pending command from a command file,
// holding the same lock as SubmitCommand so no append is lost to the
// truncate. Malformed lines are skipped; a missing file yields no commands.
func DrainCommands(path string) ([]models.MBridgeCommand, error) {
	commandMu.Lock()
	defer commandMu.Unlock()

	commands := []models.MBridgeCommand{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return commands, nil
		}
		return commands, err
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var cmd models.MBridgeCommand
		if err := json.Unmarshal(line, &cmd); err != nil {
			continue
		}
		commands = append(commands, cmd)
	}
	f.Close()

	if err := os.Truncate(path, 0); err != nil {
		return commands, err
	}
	return commands, nil
}

// -----------------------------------------------------------------------------

func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// -----------------------------------------------------------------------------

// readPayload re-parses the bridge file and enforces the mtime freshness
// window. The file is small, so a full parse per read keeps every consumer
// consistent with the newest write.
func (s *FileSource) readPayload() (*models.MBridgeFile, time.Time, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, time.Time{}, brokererr.ErrSourceUnavailable
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", brokererr.ErrSourceUnavailable, err)
	}

	age := time.Since(info.ModTime())
	if age > s.maxAge {
		return nil, time.Time{}, fmt.Errorf("%w: bridge file is %s old", brokererr.ErrStaleData, age.Round(time.Second))
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", brokererr.ErrSourceUnavailable, err)
	}

	var payload models.MBridgeFile
	if err := json.Unmarshal(data, &payload); err != nil {
		// A torn read can race a non-atomic writer. Treat it as a failed
		// poll rather than a fatal error.
		return nil, time.Time{}, fmt.Errorf("%w: malformed bridge file: %v", brokererr.ErrSourceUnavailable, err)
	}

	capturedAt := info.ModTime().UTC()
	if payload.Timestamp > 0 {
		capturedAt = time.Unix(payload.Timestamp, 0).UTC()
	}
	return &payload, capturedAt, nil
}
