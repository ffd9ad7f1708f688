// Package journal provides journal entry and strategy storage.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// Store is a JSON-file-backed store for journal entries, strategies, and
// trades. It implements the analytics engine's EntryGateway.
type Store struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	dataDir    string
	entries    map[string][]*types.JournalEntry // userID -> entries
	strategies map[string]*types.ProfessionalStrategy
	trades     map[string][]*types.Trade // strategyID -> trades
}

// NewStore creates a new journal store rooted at dataDir
func NewStore(logger *zap.Logger, dataDir string) (*Store, error) {
	store := &Store{
		logger:     logger,
		dataDir:    dataDir,
		entries:    make(map[string][]*types.JournalEntry),
		strategies: make(map[string]*types.ProfessionalStrategy),
		trades:     make(map[string][]*types.Trade),
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := store.load(); err != nil {
		logger.Warn("Failed to load journal data", zap.Error(err))
	}

	return store, nil
}

// EntriesForRange returns a user's entries whose dates fall inside the
// inclusive range, sorted ascending by date.
func (s *Store) EntriesForRange(ctx context.Context, userID string, from, to time.Time) ([]*types.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []*types.JournalEntry
	for _, entry := range s.entries[userID] {
		if entry.Date.Before(from) || entry.Date.After(to) {
			continue
		}
		filtered = append(filtered, entry)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})

	return filtered, nil
}

// EntriesForUser returns all of a user's entries sorted ascending by date
func (s *Store) EntriesForUser(userID string) []*types.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*types.JournalEntry, len(s.entries[userID]))
	copy(entries, s.entries[userID])

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	return entries
}

// UpsertEntry inserts or replaces a user's entry for its calendar day. An ID
// is assigned when missing.
func (s *Store) UpsertEntry(entry *types.JournalEntry) (*types.JournalEntry, error) {
	if entry.UserID == "" {
		return nil, fmt.Errorf("entry is missing a user id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	day := entry.Date.UTC().Truncate(24 * time.Hour)

	existing := s.entries[entry.UserID]
	replaced := false
	for i, e := range existing {
		if e.Date.UTC().Truncate(24*time.Hour).Equal(day) {
			entry.CreatedAt = e.CreatedAt
			existing[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		s.entries[entry.UserID] = append(existing, entry)
	}

	if err := s.saveEntries(entry.UserID); err != nil {
		return nil, err
	}

	return entry, nil
}

// SaveStrategy inserts or replaces a strategy
func (s *Store) SaveStrategy(strat *types.ProfessionalStrategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strat.ID == "" {
		strat.ID = uuid.New().String()
	}
	s.strategies[strat.ID] = strat

	return s.saveStrategies()
}

// Strategy returns one strategy by id
func (s *Store) Strategy(id string) (*types.ProfessionalStrategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strat, ok := s.strategies[id]
	if !ok {
		return nil, fmt.Errorf("no strategy with id %s", id)
	}
	return strat, nil
}

// Strategies returns all stored strategies, sorted by name
func (s *Store) Strategies() []*types.ProfessionalStrategy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strategies := make([]*types.ProfessionalStrategy, 0, len(s.strategies))
	for _, strat := range s.strategies {
		strategies = append(strategies, strat)
	}
	sort.SliceStable(strategies, func(i, j int) bool {
		return strategies[i].Name < strategies[j].Name
	})
	return strategies
}

// SaveTrades replaces the stored trade history for a strategy
func (s *Store) SaveTrades(strategyID string, trades []*types.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades[strategyID] = trades
	return s.saveTradeFile(strategyID)
}

// Trades returns the trade history for a strategy
func (s *Store) Trades(strategyID string) []*types.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := make([]*types.Trade, len(s.trades[strategyID]))
	copy(trades, s.trades[strategyID])
	return trades
}

// load reads all persisted entries, strategies, and trades from disk
func (s *Store) load() error {
	pattern := filepath.Join(s.dataDir, "entries_*.json")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		var entries []*types.JournalEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parsing %s: %w", file, err)
		}
		if len(entries) > 0 {
			s.entries[entries[0].UserID] = entries
		}
	}

	if data, err := os.ReadFile(filepath.Join(s.dataDir, "strategies.json")); err == nil {
		var strategies []*types.ProfessionalStrategy
		if err := json.Unmarshal(data, &strategies); err != nil {
			return fmt.Errorf("parsing strategies: %w", err)
		}
		for _, strat := range strategies {
			s.strategies[strat.ID] = strat
		}
	}

	tradeFiles, err := filepath.Glob(filepath.Join(s.dataDir, "trades_*.json"))
	if err != nil {
		return err
	}
	for _, file := range tradeFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		var trades []*types.Trade
		if err := json.Unmarshal(data, &trades); err != nil {
			return fmt.Errorf("parsing %s: %w", file, err)
		}
		if len(trades) > 0 {
			s.trades[trades[0].StrategyID] = trades
		}
	}

	return nil
}

// saveEntries persists one user's entries. Callers hold the write lock.
func (s *Store) saveEntries(userID string) error {
	filename := filepath.Join(s.dataDir, fmt.Sprintf("entries_%s.json", userID))

	data, err := json.MarshalIndent(s.entries[userID], "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write entries file: %w", err)
	}

	return nil
}

// saveStrategies persists the strategy list. Callers hold the write lock.
func (s *Store) saveStrategies() error {
	strategies := make([]*types.ProfessionalStrategy, 0, len(s.strategies))
	for _, strat := range s.strategies {
		strategies = append(strategies, strat)
	}
	sort.SliceStable(strategies, func(i, j int) bool {
		return strategies[i].ID < strategies[j].ID
	})

	data, err := json.MarshalIndent(strategies, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal strategies: %w", err)
	}

	return os.WriteFile(filepath.Join(s.dataDir, "strategies.json"), data, 0644)
}

// saveTradeFile persists one strategy's trades. Callers hold the write lock.
func (s *Store) saveTradeFile(strategyID string) error {
	data, err := json.MarshalIndent(s.trades[strategyID], "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal trades: %w", err)
	}

	filename := filepath.Join(s.dataDir, fmt.Sprintf("trades_%s.json", strategyID))
	return os.WriteFile(filename, data, 0644)
}
