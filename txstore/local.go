package txstore

import (
	"fmt"
	"multisig_svr/tables"
	"time"
)

// LocalInit is a locally-originated signatory action: the user of this
// wallet instance approving or cancelling a multisig call. It flows through
// the same serializer/store pipeline as remotely-observed chain events.
type LocalInit struct {
	AccountId    string
	ChainId      string
	CallHash     string
	BlockCreated uint64
	IndexCreated uint32
	Signatory    string
	CallData     string
	Description  string
	Cancel       bool
}

func (s *Store) InitiateLocal(req LocalInit) <-chan error {
	txKey := tables.MultisigTxKey(req.AccountId, req.ChainId, req.CallHash, req.BlockCreated, req.IndexCreated)
	return s.TQ.Enqueue(txKey, func() error {
		return s.initiateLocal(txKey, req)
	})
}

func (s *Store) initiateLocal(txKey string, req LocalInit) error {
	tx, err := s.DB.GetMultisigTx(req.AccountId, req.ChainId, req.CallHash, req.BlockCreated, req.IndexCreated)
	if err != nil {
		return fmt.Errorf("GetMultisigTx err: %s", err.Error())
	}
	if tx.Id == 0 {
		if req.Cancel {
			return fmt.Errorf("cancel for unknown transaction [%s]", txKey)
		}
		tx = tables.TableMultisigTxInfo{
			AccountId:    req.AccountId,
			ChainId:      req.ChainId,
			CallHash:     req.CallHash,
			BlockCreated: req.BlockCreated,
			IndexCreated: req.IndexCreated,
			CallData:     req.CallData,
			Status:       tables.TxStatusSigning,
			Timestamp:    time.Now().UnixMilli(),
			Description:  req.Description,
		}
		if err := s.DB.CreateMultisigTx(&tx); err != nil {
			return fmt.Errorf("CreateMultisigTx err: %s", err.Error())
		}
	} else if tx.Status.Terminal() {
		return fmt.Errorf("transaction already terminal [%s]", txKey)
	}

	status, family := tables.EventStatusPendingSigned, tables.SignedFamily()
	kind := StoreEventLocalSigned
	if req.Cancel {
		status, family = tables.EventStatusPendingCancelled, tables.CancelledFamily()
		kind = StoreEventLocalCancelled
	}
	if err := <-s.UpsertEvent(txKey, EventDelta{
		AccountId: req.Signatory,
		Status:    status,
		Family:    family,
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		return fmt.Errorf("UpsertEvent err: %s", err.Error())
	}

	s.emit(StoreEvent{
		Kind:      kind,
		TxKey:     txKey,
		ChainId:   req.ChainId,
		AccountId: req.AccountId,
		Signatory: req.Signatory,
		CallHash:  req.CallHash,
	})
	return nil
}

func (s *Store) emit(ev StoreEvent) {
	select {
	case s.events <- ev:
	default:
		log.Warn("store event channel full, dropped:", ev.TxKey)
	}
}
