package event

import (
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

type testEvent struct {
	timestamp time.Time
	payload   byte
}

func (e *testEvent) Type() Type {
	return TypeVolatilityUpdated
}

func (e *testEvent) Timestamp() time.Time {
	return e.timestamp
}

func (e *testEvent) SetTimestamp(ts time.Time) {
	e.timestamp = ts
}

func (e *testEvent) String() string {
	return fmt.Sprintf("test event %d", e.payload)
}

func (e *testEvent) Serialize(w io.Writer) error {
	_, err := w.Write([]byte{e.payload})
	return err
}

func (e *testEvent) Deserialize(r io.Reader) error {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	e.payload = buf[0]
	return nil
}

var _ Event = (*testEvent)(nil)

// TestMakeUniqueTimestamps makes sure duplicate timestamps in a list of events
// are adjusted to be unique while keeping the sort order.
func TestMakeUniqueTimestamps(t *testing.T) {
	t.Parallel()

	now := time.Now()
	events := []Event{
		&testEvent{timestamp: now.Add(time.Second), payload: 3},
		&testEvent{timestamp: now, payload: 1},
		&testEvent{timestamp: now, payload: 2},
		&testEvent{timestamp: now, payload: 4},
	}

	MakeUniqueTimestamps(events)

	for i := 0; i < len(events)-1; i++ {
		require.True(
			t, events[i].Timestamp().Before(events[i+1].Timestamp()),
			"event %d not before event %d", i, i+1,
		)
	}
}

// TestStoreEventCollision makes sure colliding timestamps are shifted on the
// nanosecond scale when storing events instead of overwriting existing ones.
func TestStoreEventCollision(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "event-test.db")
	db, err := bbolt.Open(dbPath, 0600, nil)
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	err = db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucket([]byte("events"))
		if err != nil {
			return err
		}

		for i := byte(0); i < 10; i++ {
			event := &testEvent{timestamp: now, payload: i}
			if err := StoreEvent(bucket, event); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	// All ten events must have found their own slot, each one serialized
	// as the type byte followed by the payload.
	err = db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte("events"))
		require.NotNil(t, bucket)

		numEvents := 0
		err := bucket.ForEach(func(k, v []byte) error {
			require.Len(t, v, 2)
			require.EqualValues(t, TypeVolatilityUpdated, v[0])
			numEvents++
			return nil
		})
		require.Equal(t, 10, numEvents)
		return err
	})
	require.NoError(t, err)
}
