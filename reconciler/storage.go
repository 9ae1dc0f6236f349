package reconciler

import "multisig_svr/txstore"

// HandleStorage is the multisig storage-watch callback. A change in the
// pallet storage for a tracked account means its pending-call set shifted,
// so every signing transaction of that account gets a resolve pass: call
// data and creation date may have become readable even when the matching
// chain event was missed.
func (r *Reconciler) HandleStorage(chainId, accountId string, payload interface{}) {
	list, err := r.DB.GetSigningMultisigTxList([]string{accountId})
	if err != nil {
		log.Error("HandleStorage GetSigningMultisigTxList err:", chainId, accountId, err.Error())
		return
	}
	for i := range list {
		if list[i].ChainId != chainId {
			continue
		}
		tx := list[i]
		if tx.HasDecodedCall() && tx.Timestamp > 0 {
			continue
		}
		txKey := tx.TxKey()
		resCh := r.Store.AddTask(txKey, func() error {
			row, err := r.DB.GetMultisigTxById(tx.Id)
			if err != nil {
				return err
			}
			if row.Id == 0 || row.Status.Terminal() {
				return nil
			}
			fields := r.resolve(&row)
			if len(fields) == 0 {
				return nil
			}
			return r.Store.Apply(&row, txstore.TxDelta{Fields: fields})
		})
		go func(key string) {
			if err := <-resCh; err != nil {
				log.Error("HandleStorage resolve err:", key, err.Error())
			}
		}(txKey)
	}
}
