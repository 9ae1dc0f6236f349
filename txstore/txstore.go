package txstore

import (
	"fmt"
	"multisig_svr/prom"
	"multisig_svr/tables"
	"multisig_svr/task_queue"
	"time"

	"github.com/scorpiotzh/mylog"
)

var log = mylog.NewLogger("txstore", mylog.LevelDebug)

// Persistence is the CRUD surface the store needs; *dao.DbDao implements it.
type Persistence interface {
	GetMultisigTx(accountId, chainId, callHash string, blockCreated uint64, indexCreated uint32) (tables.TableMultisigTxInfo, error)
	GetMultisigTxById(id uint64) (tables.TableMultisigTxInfo, error)
	CreateMultisigTx(tx *tables.TableMultisigTxInfo) error
	UpdateMultisigTxStatus(id uint64, status tables.TxStatus) error
	UpdateMultisigTxFields(id uint64, fields map[string]interface{}) error
	GetEventsByTxKey(txKey string) ([]tables.TableMultisigEventInfo, error)
	GetUpgradeableEvent(txKey, accountId string, family []tables.EventStatus) (tables.TableMultisigEventInfo, error)
	CreateMultisigEvent(ev *tables.TableMultisigEventInfo) error
	UpgradeMultisigEvent(id uint64, status tables.EventStatus, extrinsicHash string, eventBlock uint64, eventIndex uint32) error
	UpdateMultisigEventTimestamp(id uint64, timestamp int64) error
}

type StoreEventKind int

const (
	StoreEventLocalSigned    StoreEventKind = 0
	StoreEventLocalCancelled StoreEventKind = 1
)

// StoreEvent is emitted after a successful locally-originated write so the
// notifier can inform co-signers. Consumers run asynchronously; their
// failures never reach the store.
type StoreEvent struct {
	Kind      StoreEventKind
	TxKey     string
	ChainId   string
	AccountId string
	Signatory string
	CallHash  string
}

// Store is the authoritative representation of multisig transactions. Every
// mutation goes through the per-key task queue: transaction writes keyed by
// the composite tx identity, event writes keyed by (tx identity, signatory)
// so different signatories' events on one transaction proceed concurrently.
type Store struct {
	DB     Persistence
	TQ     *task_queue.TaskQueue
	events chan StoreEvent
}

func NewStore(db Persistence, tq *task_queue.TaskQueue) *Store {
	return &Store{
		DB:     db,
		TQ:     tq,
		events: make(chan StoreEvent, 64),
	}
}

// Events is the fire-and-forget side-effect stream.
func (s *Store) Events() <-chan StoreEvent {
	return s.events
}

// AddTask is the hook letting callers (UI actions, the reconciliation driver)
// run their own unit inside the transaction's FIFO turn.
func (s *Store) AddTask(txKey string, fn func() error) <-chan error {
	return s.TQ.Enqueue(txKey, fn)
}

type TxDelta struct {
	Status *tables.TxStatus
	Fields map[string]interface{}
}

// Apply merges a partial update into the stored transaction. Must run inside
// the transaction's serializer turn (see AddTask); it does not enqueue.
// A status write against an already-terminal transaction is a logged no-op.
func (s *Store) Apply(tx *tables.TableMultisigTxInfo, delta TxDelta) error {
	if delta.Status != nil {
		if tx.Status.Terminal() {
			log.Warn("Apply status no-op, tx already terminal:", tx.TxKey(), tx.Status, *delta.Status)
			prom.CounterTerminalConflict.WithLabelValues(tx.ChainId).Inc()
		} else {
			if err := s.DB.UpdateMultisigTxStatus(tx.Id, *delta.Status); err != nil {
				return fmt.Errorf("UpdateMultisigTxStatus err: %s", err.Error())
			}
			tx.Status = *delta.Status
		}
	}
	if len(delta.Fields) > 0 {
		if err := s.DB.UpdateMultisigTxFields(tx.Id, delta.Fields); err != nil {
			return fmt.Errorf("UpdateMultisigTxFields err: %s", err.Error())
		}
	}
	return nil
}

type EventDelta struct {
	AccountId     string
	Status        tables.EventStatus
	Family        []tables.EventStatus
	Timestamp     int64
	ExtrinsicHash string
	EventBlock    uint64
	EventIndex    uint32
}

// UpsertEvent upgrades the signatory's matching pending event in place, or
// appends a new row if this signatory action was never locally observed.
// Serialized per (txKey, signatory); never produces two rows for one action.
func (s *Store) UpsertEvent(txKey string, delta EventDelta) <-chan error {
	return s.TQ.Enqueue(eventTaskKey(txKey, delta.AccountId), func() error {
		return s.upsertEvent(txKey, delta)
	})
}

func (s *Store) upsertEvent(txKey string, delta EventDelta) error {
	ev, err := s.DB.GetUpgradeableEvent(txKey, delta.AccountId, delta.Family)
	if err != nil {
		return fmt.Errorf("GetUpgradeableEvent err: %s", err.Error())
	}
	if ev.Id > 0 {
		if delta.Status.Pending() && !ev.Status.Pending() {
			// the final status already landed from a chain event; a late
			// pending write must not downgrade it
			log.Warn("upsertEvent pending no-op, final already recorded:", txKey, delta.AccountId)
			return nil
		}
		if err := s.DB.UpgradeMultisigEvent(ev.Id, delta.Status, delta.ExtrinsicHash, delta.EventBlock, delta.EventIndex); err != nil {
			return fmt.Errorf("UpgradeMultisigEvent err: %s", err.Error())
		}
		return nil
	}
	ts := delta.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	if err := s.DB.CreateMultisigEvent(&tables.TableMultisigEventInfo{
		TxKey:         txKey,
		AccountId:     delta.AccountId,
		Status:        delta.Status,
		Timestamp:     ts,
		ExtrinsicHash: delta.ExtrinsicHash,
		EventBlock:    delta.EventBlock,
		EventIndex:    delta.EventIndex,
	}); err != nil {
		return fmt.Errorf("CreateMultisigEvent err: %s", err.Error())
	}
	return nil
}

func eventTaskKey(txKey, accountId string) string {
	return txKey + "|" + accountId
}
