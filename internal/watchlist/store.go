// Package watchlist persists per-user ticker watchlists in a JSON file on
// disk. The file can later be swapped for a database without API changes.
package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrProRequired is returned when a free-plan user hits the free limit.
var ErrProRequired = errors.New("pro required to add more tickers to your watchlist")

// ErrLimitReached is returned when even the premium limit is exhausted.
var ErrLimitReached = errors.New("watchlist limit reached")

// PremiumChecker reports whether a user is on the premium plan. Billing is
// an external collaborator, so the check is injected.
type PremiumChecker func(userID string) bool

// Store holds watchlists keyed by user ID with concurrency safety.
type Store struct {
	mu           sync.Mutex
	path         string
	lists        map[string][]string
	freeLimit    int
	premiumLimit int
	isPremium    PremiumChecker
}

// NewStore loads (or initializes) the watchlist file. A nil premium checker
// treats every user as free-plan.
func NewStore(path string, freeLimit, premiumLimit int, isPremium PremiumChecker) (*Store, error) {
	if isPremium == nil {
		isPremium = func(string) bool { return false }
	}

	lists := make(map[string][]string)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read watchlists: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &lists); err != nil {
			return nil, fmt.Errorf("parse watchlists: %w", err)
		}
	}

	return &Store{
		path:         path,
		lists:        lists,
		freeLimit:    freeLimit,
		premiumLimit: premiumLimit,
		isPremium:    isPremium,
	}, nil
}

// Add appends a ticker to the user's watchlist, enforcing plan limits.
// Adding a ticker that is already present is a no-op. Returns the updated
// list. The ticker must already be normalized.
func (s *Store) Add(userID, symbol string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[userID]
	for _, t := range list {
		if t == symbol {
			return append([]string(nil), list...), nil
		}
	}

	limit := s.freeLimit
	premium := s.isPremium(userID)
	if premium {
		limit = s.premiumLimit
	}
	if len(list) >= limit {
		if !premium {
			return nil, ErrProRequired
		}
		return nil, fmt.Errorf("%w (max %d)", ErrLimitReached, limit)
	}

	list = append(list, symbol)
	s.lists[userID] = list
	if err := s.save(); err != nil {
		return nil, err
	}
	return append([]string(nil), list...), nil
}

// Remove drops a ticker from the user's watchlist. Removing an absent
// ticker is a no-op. Returns the updated list.
func (s *Store) Remove(userID, symbol string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[userID]
	for i, t := range list {
		if t == symbol {
			list = append(list[:i], list[i+1:]...)
			s.lists[userID] = list
			if err := s.save(); err != nil {
				return nil, err
			}
			break
		}
	}
	return append([]string(nil), list...), nil
}

// List returns a copy of the user's watchlist.
func (s *Store) List(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lists[userID]...)
}

// save writes the full state atomically: temp file in the same directory,
// then rename.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.lists, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal watchlists: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create watchlist dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write watchlists: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace watchlists: %w", err)
	}
	return nil
}
