package statedb

import (
	"bytes"
	"fmt"
	"io"
	"math/big"
	"sort"
	"time"

	"github.com/0xhaz/Dynamic-Fee/amm"
	"github.com/0xhaz/Dynamic-Fee/event"
	"github.com/0xhaz/Dynamic-Fee/verifier"
	"github.com/ethereum/go-ethereum/common"
	"go.etcd.io/bbolt"
)

// eventsAllocSize is the average number of events we expect the hook to
// accumulate and use that to pre-allocate the event slice.
const eventsAllocSize = 50

// VolatilityUpdatedEvent is an event implementation that tracks an
// authenticated callback overwriting the volatility cell.
type VolatilityUpdatedEvent struct {
	// timestamp is the unique timestamp the event was created/recorded
	// at.
	timestamp time.Time

	// RequestID is the identifier of the proved request that delivered
	// the value.
	RequestID verifier.RequestID

	// Volatility is the newly stored volatility value.
	Volatility *big.Int
}

// NewVolatilityUpdatedEvent creates a new VolatilityUpdatedEvent with the
// current system time as the timestamp.
func NewVolatilityUpdatedEvent(id verifier.RequestID,
	volatility *big.Int) *VolatilityUpdatedEvent {

	return &VolatilityUpdatedEvent{
		timestamp:  time.Now(),
		RequestID:  id,
		Volatility: volatility,
	}
}

// Type returns the type of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *VolatilityUpdatedEvent) Type() event.Type {
	return event.TypeVolatilityUpdated
}

// Timestamp is the time the event happened.
//
// NOTE: This is part of the event.Event interface.
func (e *VolatilityUpdatedEvent) Timestamp() time.Time {
	return e.timestamp
}

// SetTimestamp updates the timestamp of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *VolatilityUpdatedEvent) SetTimestamp(ts time.Time) {
	e.timestamp = ts
}

// String returns a human readable representation of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *VolatilityUpdatedEvent) String() string {
	return fmt.Sprintf("VolatilityUpdated(request=%v, volatility=%v)",
		e.RequestID, e.Volatility)
}

// Serialize writes the event data to a binary storage format.
//
// NOTE: This is part of the event.Event interface.
func (e *VolatilityUpdatedEvent) Serialize(w io.Writer) error {
	return WriteElements(w, e.RequestID, e.Volatility)
}

// Deserialize reads the event data from a binary storage format.
//
// NOTE: This is part of the event.Event interface.
func (e *VolatilityUpdatedEvent) Deserialize(r io.Reader) error {
	return ReadElements(r, &e.RequestID, &e.Volatility)
}

// A compile time assertion to make sure VolatilityUpdatedEvent implements the
// event.Event interface.
var _ event.Event = (*VolatilityUpdatedEvent)(nil)

// KeyRegisteredEvent is an event implementation that tracks the owner
// registering a new verification key.
type KeyRegisteredEvent struct {
	// timestamp is the unique timestamp the event was created/recorded
	// at.
	timestamp time.Time

	// VerificationKey is the newly registered key hash.
	VerificationKey common.Hash
}

// NewKeyRegisteredEvent creates a new KeyRegisteredEvent with the current
// system time as the timestamp.
func NewKeyRegisteredEvent(key common.Hash) *KeyRegisteredEvent {
	return &KeyRegisteredEvent{
		timestamp:       time.Now(),
		VerificationKey: key,
	}
}

// Type returns the type of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *KeyRegisteredEvent) Type() event.Type {
	return event.TypeKeyRegistered
}

// Timestamp is the time the event happened.
//
// NOTE: This is part of the event.Event interface.
func (e *KeyRegisteredEvent) Timestamp() time.Time {
	return e.timestamp
}

// SetTimestamp updates the timestamp of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *KeyRegisteredEvent) SetTimestamp(ts time.Time) {
	e.timestamp = ts
}

// String returns a human readable representation of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *KeyRegisteredEvent) String() string {
	return fmt.Sprintf("KeyRegistered(key=%v)", e.VerificationKey)
}

// Serialize writes the event data to a binary storage format.
//
// NOTE: This is part of the event.Event interface.
func (e *KeyRegisteredEvent) Serialize(w io.Writer) error {
	return WriteElements(w, e.VerificationKey)
}

// Deserialize reads the event data from a binary storage format.
//
// NOTE: This is part of the event.Event interface.
func (e *KeyRegisteredEvent) Deserialize(r io.Reader) error {
	return ReadElements(r, &e.VerificationKey)
}

var _ event.Event = (*KeyRegisteredEvent)(nil)

// PoolAdmittedEvent is an event implementation that tracks a pool passing the
// dynamic fee admission check.
type PoolAdmittedEvent struct {
	// timestamp is the unique timestamp the event was created/recorded
	// at.
	timestamp time.Time

	// PoolID is the identifier of the admitted pool.
	PoolID amm.PoolID
}

// NewPoolAdmittedEvent creates a new PoolAdmittedEvent with the current
// system time as the timestamp.
func NewPoolAdmittedEvent(id amm.PoolID) *PoolAdmittedEvent {
	return &PoolAdmittedEvent{
		timestamp: time.Now(),
		PoolID:    id,
	}
}

// Type returns the type of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *PoolAdmittedEvent) Type() event.Type {
	return event.TypePoolAdmitted
}

// Timestamp is the time the event happened.
//
// NOTE: This is part of the event.Event interface.
func (e *PoolAdmittedEvent) Timestamp() time.Time {
	return e.timestamp
}

// SetTimestamp updates the timestamp of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *PoolAdmittedEvent) SetTimestamp(ts time.Time) {
	e.timestamp = ts
}

// String returns a human readable representation of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *PoolAdmittedEvent) String() string {
	return fmt.Sprintf("PoolAdmitted(pool=%v)", e.PoolID)
}

// Serialize writes the event data to a binary storage format.
//
// NOTE: This is part of the event.Event interface.
func (e *PoolAdmittedEvent) Serialize(w io.Writer) error {
	return WriteElements(w, e.PoolID)
}

// Deserialize reads the event data from a binary storage format.
//
// NOTE: This is part of the event.Event interface.
func (e *PoolAdmittedEvent) Deserialize(r io.Reader) error {
	return ReadElements(r, &e.PoolID)
}

var _ event.Event = (*PoolAdmittedEvent)(nil)

// CommissionChargedEvent is an event implementation that tracks a commission
// skim being pulled into the hook's custody.
type CommissionChargedEvent struct {
	// timestamp is the unique timestamp the event was created/recorded
	// at.
	timestamp time.Time

	// PoolID is the identifier of the pool the trade executed in.
	PoolID amm.PoolID

	// Token is the address of the inbound token the commission was
	// denominated in.
	Token common.Address

	// Amount is the extracted commission amount.
	Amount *big.Int
}

// NewCommissionChargedEvent creates a new CommissionChargedEvent with the
// current system time as the timestamp.
func NewCommissionChargedEvent(id amm.PoolID, token common.Address,
	amount *big.Int) *CommissionChargedEvent {

	return &CommissionChargedEvent{
		timestamp: time.Now(),
		PoolID:    id,
		Token:     token,
		Amount:    amount,
	}
}

// Type returns the type of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *CommissionChargedEvent) Type() event.Type {
	return event.TypeCommissionCharged
}

// Timestamp is the time the event happened.
//
// NOTE: This is part of the event.Event interface.
func (e *CommissionChargedEvent) Timestamp() time.Time {
	return e.timestamp
}

// SetTimestamp updates the timestamp of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *CommissionChargedEvent) SetTimestamp(ts time.Time) {
	e.timestamp = ts
}

// String returns a human readable representation of the event.
//
// NOTE: This is part of the event.Event interface.
func (e *CommissionChargedEvent) String() string {
	return fmt.Sprintf("CommissionCharged(pool=%v, token=%v, amount=%v)",
		e.PoolID, e.Token, e.Amount)
}

// Serialize writes the event data to a binary storage format.
//
// NOTE: This is part of the event.Event interface.
func (e *CommissionChargedEvent) Serialize(w io.Writer) error {
	return WriteElements(w, e.PoolID, e.Token, e.Amount)
}

// Deserialize reads the event data from a binary storage format.
//
// NOTE: This is part of the event.Event interface.
func (e *CommissionChargedEvent) Deserialize(r io.Reader) error {
	return ReadElements(r, &e.PoolID, &e.Token, &e.Amount)
}

var _ event.Event = (*CommissionChargedEvent)(nil)

// storeEventTx stores a single event in the main event bucket within an
// already open transaction, so a state write and its notification either land
// together or roll back together. For convenience, the event is allowed to be
// nil, in case no update really happened.
func storeEventTx(tx *bbolt.Tx, evt event.Event) error {
	if evt == nil {
		return nil
	}

	evtBucket, err := getBucket(tx, eventBucketKey)
	if err != nil {
		return err
	}
	return event.StoreEvent(evtBucket, evt)
}

// LogEvent stores a single event in the main event bucket, ensuring the
// uniqueness of its timestamp in the process.
func (db *DB) LogEvent(evt event.Event) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return storeEventTx(tx, evt)
	})
}

// AllEvents returns all events that are of the given type. Use event.TypeAny
// to not filter by type.
func (db *DB) AllEvents(evtType event.Type) ([]event.Event, error) {
	return db.getEvents(func(_ time.Time, t event.Type) bool {
		return evtType == event.TypeAny || evtType == t
	})
}

// GetEventsInRange returns all events that have their timestamps between the
// given start and end time (inclusive) and are of the given type. Use
// event.TypeAny to not filter by type.
func (db *DB) GetEventsInRange(start, end time.Time,
	evtType event.Type) ([]event.Event, error) {

	return db.getEvents(func(ts time.Time, t event.Type) bool {
		typeOk := evtType == event.TypeAny || evtType == t
		return typeOk && !ts.Before(start) && !ts.After(end)
	})
}

// getEvents iterates through all keys in the main events bucket and returns
// all events that match the given predicate.
func (db *DB) getEvents(predicate event.Predicate) ([]event.Event, error) {
	events := make([]event.Event, 0, eventsAllocSize)
	err := db.View(func(tx *bbolt.Tx) error {
		eventBucket, err := getBucket(tx, eventBucketKey)
		if err != nil {
			return err
		}

		return eventBucket.ForEach(func(k, v []byte) error {
			// There shouldn't be any other keys below the main
			// event bucket so we fail hard if a key doesn't match
			// our required length.
			if len(k) != event.TimestampLength {
				return fmt.Errorf("unexpected timestamp "+
					"key length: %d", len(k))
			}

			// The value must contain at least one byte which is
			// the event type.
			if len(v) < 1 {
				return fmt.Errorf("unexpected timestamp "+
					"value length: %d", len(v))
			}

			// Decode the timestamp and type to make sure this
			// event matches our given filter predicate.
			ts := time.Unix(0, int64(byteOrder.Uint64(k)))
			evtType := event.Type(v[0])
			if !predicate(ts, evtType) {
				return nil
			}

			// Deserialize the event according to its type.
			reader := bytes.NewReader(v[1:])
			evt, err := deserializeEvent(reader, ts, evtType)
			if err != nil {
				return err
			}

			events = append(events, evt)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Make sure we always return a sorted list, even if the underlying
	// storage might scramble them.
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp().Before(events[j].Timestamp())
	})

	return events, nil
}

// deserializeEvent constructs the concrete event implementation for the given
// type and reads its payload.
func deserializeEvent(r io.Reader, ts time.Time,
	evtType event.Type) (event.Event, error) {

	var evt event.Event
	switch evtType {
	case event.TypeVolatilityUpdated:
		evt = &VolatilityUpdatedEvent{timestamp: ts}

	case event.TypeKeyRegistered:
		evt = &KeyRegisteredEvent{timestamp: ts}

	case event.TypePoolAdmitted:
		evt = &PoolAdmittedEvent{timestamp: ts}

	case event.TypeCommissionCharged:
		evt = &CommissionChargedEvent{timestamp: ts}

	default:
		return nil, fmt.Errorf("unknown event type <%d>", evtType)
	}

	if err := evt.Deserialize(r); err != nil {
		return nil, err
	}
	return evt, nil
}
