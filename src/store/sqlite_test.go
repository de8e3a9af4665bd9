package store

import (
	"path/filepath"
	"testing"

	"trade-bridge/src/logger"
	"trade-bridge/src/models"
)

func newTestStore(t *testing.T) *SQLiteSettingsStore {
	t.Helper()

	cfg := &models.MConfig{}
	cfg.Storage.DBType = "sqlite"
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "settings.db")

	s := NewSQLiteSettingsStore(cfg, logger.NewLogger("error", "SettingsStoreTest"))
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadMissingAccount(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.Load("12345678")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found {
		t.Error("Expected no row for a fresh account")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := models.DefaultTradingParameters()
	want.MaxDailyTrades = 3
	want.TradingStart = "08:00"
	want.TradingEnd = "17:00"
	want.StrategyEnabled = true

	if err := s.Save("12345678", want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, found, err := s.Load("12345678")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found {
		t.Fatal("Expected saved row to be found")
	}
	if got != want {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSaveUpsertsExistingAccount(t *testing.T) {
	s := newTestStore(t)

	first := models.DefaultTradingParameters()
	if err := s.Save("12345678", first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := first
	second.LotSize = 0.05
	second.MaxSpreadPips = 3.0
	if err := s.Save("12345678", second); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	got, found, err := s.Load("12345678")
	if err != nil || !found {
		t.Fatalf("Load failed: found=%v err=%v", found, err)
	}
	if got.LotSize != 0.05 || got.MaxSpreadPips != 3.0 {
		t.Errorf("Upsert did not replace values: %+v", got)
	}
}

func TestAccountsAreIndependent(t *testing.T) {
	s := newTestStore(t)

	a := models.DefaultTradingParameters()
	a.LotSize = 0.01
	b := models.DefaultTradingParameters()
	b.LotSize = 0.10

	if err := s.Save("acc-a", a); err != nil {
		t.Fatalf("Save a: %v", err)
	}
	if err := s.Save("acc-b", b); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	gotA, _, _ := s.Load("acc-a")
	gotB, _, _ := s.Load("acc-b")
	if gotA.LotSize != 0.01 || gotB.LotSize != 0.10 {
		t.Errorf("Accounts bled into each other: a=%+v b=%+v", gotA, gotB)
	}
}
