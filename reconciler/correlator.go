package reconciler

import (
	"fmt"
	"multisig_svr/chain"
	"multisig_svr/tables"
	"multisig_svr/txstore"
	"time"
)

// Correlation is the state transition one matched chain event produces: the
// transaction's final status plus the event-row upgrade/append to apply.
type Correlation struct {
	Tx       tables.TableMultisigTxInfo
	TxStatus tables.TxStatus
	Event    txstore.EventDelta
}

// correlate maps an incoming chain event to the locally tracked transaction
// via the composite natural key. Returns nil for the unmatched case.
func (r *Reconciler) correlate(ev *chain.Event) (*Correlation, error) {
	tx, err := r.DB.GetMultisigTx(ev.MultisigAccount, ev.ChainId, ev.CallHash, ev.Block, ev.Index)
	if err != nil {
		return nil, fmt.Errorf("GetMultisigTx err: %s", err.Error())
	}
	if tx.Id == 0 {
		return nil, nil
	}

	corr := Correlation{Tx: tx}
	switch ev.Kind {
	case chain.EventKindExecution:
		if ev.ExecutionFailed() {
			corr.TxStatus = tables.TxStatusError
		} else {
			corr.TxStatus = tables.TxStatusExecuted
		}
		corr.Event = txstore.EventDelta{
			Status: tables.EventStatusSigned,
			Family: tables.SignedFamily(),
		}
	case chain.EventKindCancellation:
		corr.TxStatus = tables.TxStatusCancelled
		corr.Event = txstore.EventDelta{
			Status: tables.EventStatusCancelled,
			Family: tables.CancelledFamily(),
		}
	default:
		return nil, fmt.Errorf("unhandled event kind [%d]", ev.Kind)
	}
	corr.Event.AccountId = ev.ActingAccount
	corr.Event.Timestamp = time.Now().UnixMilli()
	corr.Event.ExtrinsicHash = ev.ExtrinsicHash
	corr.Event.EventBlock = ev.EventBlock
	corr.Event.EventIndex = ev.EventIndex
	return &corr, nil
}
