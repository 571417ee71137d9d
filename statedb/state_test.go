package statedb

import (
	"errors"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/0xhaz/Dynamic-Fee/amm"
	"github.com/0xhaz/Dynamic-Fee/event"
	"github.com/0xhaz/Dynamic-Fee/verifier"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// newTestDB creates a fresh database in a test scoped directory.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

// TestStateCells makes sure the three state cells start at their zero values
// and roundtrip through the database.
func TestStateCells(t *testing.T) {
	db := newTestDB(t)

	// A fresh database has no volatility information, no registered key
	// and no owner.
	volatility, err := db.Volatility()
	require.NoError(t, err)
	require.Zero(t, volatility.Sign())

	key, err := db.VerificationKey()
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, key)

	owner, err := db.Owner()
	require.NoError(t, err)
	require.Equal(t, common.Address{}, owner)

	// Store and read back each cell. Each accepted update overwrites the
	// prior value, no history is kept.
	newVolatility := new(big.Int).Mul(
		big.NewInt(20),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	)
	require.NoError(t, db.StoreVolatility(newVolatility, nil))
	require.NoError(t, db.StoreVolatility(newVolatility, nil))

	volatility, err = db.Volatility()
	require.NoError(t, err)
	require.Zero(t, volatility.Cmp(newVolatility))

	newKey := common.HexToHash("0x1234")
	require.NoError(t, db.StoreVerificationKey(newKey, nil))
	key, err = db.VerificationKey()
	require.NoError(t, err)
	require.Equal(t, newKey, key)

	newOwner := common.HexToAddress("0xabcd")
	require.NoError(t, db.StoreOwner(newOwner))
	owner, err = db.Owner()
	require.NoError(t, err)
	require.Equal(t, newOwner, owner)
}

// brokenEvent is an event whose serialization always fails, forcing an error
// in the middle of a combined state and event transaction.
type brokenEvent struct {
	timestamp time.Time
}

func (e *brokenEvent) Type() event.Type {
	return event.TypeVolatilityUpdated
}

func (e *brokenEvent) Timestamp() time.Time {
	return e.timestamp
}

func (e *brokenEvent) SetTimestamp(ts time.Time) {
	e.timestamp = ts
}

func (e *brokenEvent) String() string {
	return "broken event"
}

func (e *brokenEvent) Serialize(io.Writer) error {
	return errors.New("serialize failed")
}

func (e *brokenEvent) Deserialize(io.Reader) error {
	return errors.New("deserialize failed")
}

var _ event.Event = (*brokenEvent)(nil)

// TestStateWriteAtomicity makes sure a combined state and event write is all
// or nothing: if the event cannot be stored, the state cell write rolls back
// with it.
func TestStateWriteAtomicity(t *testing.T) {
	db := newTestDB(t)

	newVolatility := big.NewInt(123456)
	evt := &brokenEvent{timestamp: time.Now()}

	require.Error(t, db.StoreVolatility(newVolatility, evt))

	// The failed transaction must leave neither the cell nor the event
	// behind.
	volatility, err := db.Volatility()
	require.NoError(t, err)
	require.Zero(t, volatility.Sign())

	all, err := db.AllEvents(event.TypeAny)
	require.NoError(t, err)
	require.Empty(t, all)

	// The same guarantee holds for the key cell and the admission set.
	require.Error(t, db.StoreVerificationKey(common.HexToHash("0x01"), evt))
	key, err := db.VerificationKey()
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, key)

	cfg := amm.PoolConfig{
		ID:      amm.PoolID{0x01},
		FeeMode: amm.FeeModeDynamic,
	}
	require.Error(t, db.MarkPoolAdmitted(cfg, evt))
	admitted, err := db.IsPoolAdmitted(cfg.ID)
	require.NoError(t, err)
	require.False(t, admitted)
}

// TestPoolAdmission makes sure pool admissions persist.
func TestPoolAdmission(t *testing.T) {
	db := newTestDB(t)

	cfg := amm.PoolConfig{
		ID:      amm.PoolID{0x01},
		Token0:  common.HexToAddress("0x01"),
		Token1:  common.HexToAddress("0x02"),
		FeeMode: amm.FeeModeDynamic,
	}

	admitted, err := db.IsPoolAdmitted(cfg.ID)
	require.NoError(t, err)
	require.False(t, admitted)

	require.NoError(t, db.MarkPoolAdmitted(cfg, nil))

	admitted, err = db.IsPoolAdmitted(cfg.ID)
	require.NoError(t, err)
	require.True(t, admitted)

	admitted, err = db.IsPoolAdmitted(amm.PoolID{0x02})
	require.NoError(t, err)
	require.False(t, admitted)
}

// TestEventLog makes sure events roundtrip through the event bucket and can
// be filtered by type.
func TestEventLog(t *testing.T) {
	db := newTestDB(t)

	volatility := big.NewInt(123456)
	reqID := verifier.RequestID{0x0a}

	require.NoError(t, db.LogEvent(
		NewVolatilityUpdatedEvent(reqID, volatility),
	))
	require.NoError(t, db.LogEvent(
		NewKeyRegisteredEvent(common.HexToHash("0xbeef")),
	))
	require.NoError(t, db.LogEvent(
		NewPoolAdmittedEvent(amm.PoolID{0x01}),
	))
	require.NoError(t, db.LogEvent(NewCommissionChargedEvent(
		amm.PoolID{0x01}, common.HexToAddress("0x02"),
		big.NewInt(42),
	)))

	// A nil event is a no-op.
	require.NoError(t, db.LogEvent(nil))

	all, err := db.AllEvents(event.TypeAny)
	require.NoError(t, err)
	require.Len(t, all, 4)

	updates, err := db.AllEvents(event.TypeVolatilityUpdated)
	require.NoError(t, err)
	require.Len(t, updates, 1)

	update, ok := updates[0].(*VolatilityUpdatedEvent)
	require.True(t, ok)
	require.Equal(t, reqID, update.RequestID)
	require.Zero(t, update.Volatility.Cmp(volatility))

	commissions, err := db.AllEvents(event.TypeCommissionCharged)
	require.NoError(t, err)
	require.Len(t, commissions, 1)

	commission, ok := commissions[0].(*CommissionChargedEvent)
	require.True(t, ok)
	require.Zero(t, commission.Amount.Cmp(big.NewInt(42)))
}
