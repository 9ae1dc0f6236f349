package reconciler

import (
	"fmt"
	"multisig_svr/txstore"

	"golang.org/x/sync/errgroup"
)

// RepairMetadata is the periodic pass over tracked transactions with missing
// metadata. Each transaction is resolved inside its own serializer turn;
// one failing transaction never blocks the pass for the others.
func (r *Reconciler) RepairMetadata(limit, concurrency int) error {
	list, err := r.DB.GetMultisigTxNeedRepair(limit)
	if err != nil {
		return fmt.Errorf("GetMultisigTxNeedRepair err: %s", err.Error())
	}
	if len(list) == 0 {
		return nil
	}
	log.Info("RepairMetadata:", len(list))

	if concurrency <= 0 {
		concurrency = 5
	}
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := range list {
		tx := list[i]
		g.Go(func() error {
			err := <-r.Store.AddTask(tx.TxKey(), func() error {
				// re-read inside the turn, the row may have moved on
				cur, err := r.DB.GetMultisigTxById(tx.Id)
				if err != nil {
					return fmt.Errorf("GetMultisigTxById err: %s", err.Error())
				}
				if cur.Id == 0 {
					return nil
				}
				fields := r.resolve(&cur)
				if len(fields) == 0 {
					return nil
				}
				return r.Store.Apply(&cur, txstore.TxDelta{Fields: fields})
			})
			if err != nil {
				log.Error("RepairMetadata tx err:", tx.TxKey(), err.Error())
			}
			return nil
		})
	}
	return g.Wait()
}
