package alerts

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "alerts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_UpsertAndListRules(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertRule("a@example.com", "AAPL", true))
	require.NoError(t, s.UpsertRule("a@example.com", "MSFT", true))
	require.NoError(t, s.UpsertRule("b@example.com", "AAPL", false))

	all, err := s.Rules(false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	enabled, err := s.Rules(true)
	require.NoError(t, err)
	assert.Len(t, enabled, 2)

	// Re-subscribing flips enabled in place instead of duplicating the row.
	require.NoError(t, s.UpsertRule("b@example.com", "AAPL", true))
	enabled, err = s.Rules(true)
	require.NoError(t, err)
	assert.Len(t, enabled, 3)

	forA, err := s.RulesForEmail("a@example.com")
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.Equal(t, "AAPL", forA[0].Ticker)
	assert.Equal(t, "MSFT", forA[1].Ticker)
}

func TestStore_DeleteRuleRemovesState(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertRule("a@example.com", "AAPL", true))
	require.NoError(t, s.UpsertState("a@example.com", "AAPL", "Uptrend", "strong", "Stable"))

	require.NoError(t, s.DeleteRule("a@example.com", "AAPL"))

	rules, err := s.RulesForEmail("a@example.com")
	require.NoError(t, err)
	assert.Empty(t, rules)

	st, err := s.GetState("a@example.com", "AAPL")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestStore_StateRoundTrip(t *testing.T) {
	s := newTestStore(t)

	st, err := s.GetState("a@example.com", "AAPL")
	require.NoError(t, err)
	assert.Nil(t, st, "unknown pair has no state")

	require.NoError(t, s.UpsertState("a@example.com", "AAPL", "Sideways", "moderate", "Easing"))

	st, err = s.GetState("a@example.com", "AAPL")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "Sideways", st.LastRegime)
	assert.Equal(t, "moderate", st.LastTrendBucket)
	assert.Equal(t, "Easing", st.LastDecay)
	assert.Nil(t, st.LastSentAt)

	sent := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateLastSent("a@example.com", "AAPL", sent))

	// A later state refresh must not clobber last_sent_at.
	require.NoError(t, s.UpsertState("a@example.com", "AAPL", "Uptrend", "strong", "Stable"))

	st, err = s.GetState("a@example.com", "AAPL")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "Uptrend", st.LastRegime)
	require.NotNil(t, st.LastSentAt)
	assert.Equal(t, sent.Unix(), st.LastSentAt.Unix())
}
