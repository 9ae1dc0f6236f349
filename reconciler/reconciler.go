package reconciler

import (
	"context"
	"fmt"
	"multisig_svr/chain"
	"multisig_svr/prom"
	"multisig_svr/tables"
	"multisig_svr/txstore"

	"github.com/scorpiotzh/mylog"
)

var log = mylog.NewLogger("reconciler", mylog.LevelDebug)

// Persistence adds the repair query on top of the store's CRUD surface.
// *dao.DbDao implements it.
type Persistence interface {
	txstore.Persistence
	GetMultisigTxNeedRepair(limit int) ([]tables.TableMultisigTxInfo, error)
	GetSigningMultisigTxList(accountIds []string) ([]tables.TableMultisigTxInfo, error)
}

// Reconciler wires the correlator, the call-data resolver and the store
// together: one subscription callback becomes one serializer unit keyed by
// the transaction identity, so the whole pipeline for one chain event is
// atomic relative to other events on the same transaction.
type Reconciler struct {
	Ctx     context.Context
	DB      Persistence
	Store   *txstore.Store
	Clients map[string]chain.Client
	Pool    *chain.RpcPool
	Journal *Journal
}

// HandleEvent is the subscription callback for both event streams of every
// chain. Nothing here may escape to crash the process.
func (r *Reconciler) HandleEvent(chainId string, payload interface{}) {
	ev, err := chain.ParseEvent(chainId, payload)
	if err != nil {
		// malformed payloads are the unmatched-event case, not a type error
		log.Debug("HandleEvent drop malformed payload:", chainId, err.Error())
		prom.CounterEventUnmatched.WithLabelValues(chainId).Inc()
		return
	}
	journalId := r.journalEvent(ev)

	txKey := tables.MultisigTxKey(ev.MultisigAccount, ev.ChainId, ev.CallHash, ev.Block, ev.Index)
	resCh := r.Store.AddTask(txKey, func() error {
		return r.handleEvent(txKey, journalId, ev)
	})
	go func() {
		if err := <-resCh; err != nil {
			log.Error("handleEvent err:", txKey, err.Error())
		}
	}()
}

func (r *Reconciler) handleEvent(txKey, journalId string, ev *chain.Event) error {
	corr, err := r.correlate(ev)
	if err != nil {
		return fmt.Errorf("correlate err: %s", err.Error())
	}
	if corr == nil {
		// event for a transaction this wallet never observed locally, e.g.
		// initiated on another device; journaled, dropped here
		log.Debug("HandleEvent unmatched:", txKey)
		prom.CounterEventUnmatched.WithLabelValues(ev.ChainId).Inc()
		return nil
	}

	fields := r.resolve(&corr.Tx)
	delta := txstore.TxDelta{Status: &corr.TxStatus, Fields: fields}
	if err := r.Store.Apply(&corr.Tx, delta); err != nil {
		return fmt.Errorf("Apply err: %s", err.Error())
	}
	if err := <-r.Store.UpsertEvent(txKey, corr.Event); err != nil {
		return fmt.Errorf("UpsertEvent err: %s", err.Error())
	}
	prom.CounterEventCorrelated.WithLabelValues(ev.ChainId, ev.Kind.String()).Inc()
	r.markJournalMatched(journalId)
	return nil
}
