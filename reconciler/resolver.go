package reconciler

import (
	"encoding/hex"
	"multisig_svr/tables"
	"strings"
)

// resolve backfills what can be derived from available chain/local data:
// the decoded call body from call bytes, the call bytes from the creating
// timepoint, and the creation date from the block timestamp. Each step is
// best-effort; a failed fetch leaves the field unset for this pass and the
// next repair pass tries again. Nothing is ever invented.
func (r *Reconciler) resolve(tx *tables.TableMultisigTxInfo) map[string]interface{} {
	fields := make(map[string]interface{})
	client, ok := r.Clients[tx.ChainId]
	if !ok {
		return fields
	}

	if tx.CallData == "" && tx.BlockCreated > 0 {
		var data []byte
		err := r.Pool.Do(r.Ctx, "QueryCallData", func() error {
			var e error
			data, e = client.QueryCallData(r.Ctx, tx.BlockCreated, tx.IndexCreated)
			return e
		})
		if err != nil {
			log.Warn("resolve QueryCallData err:", tx.TxKey(), err.Error())
		} else if len(data) > 0 {
			tx.CallData = "0x" + hex.EncodeToString(data)
			fields["call_data"] = tx.CallData
		}
	}

	if tx.CallData != "" && !tx.HasDecodedCall() {
		raw, err := hex.DecodeString(strings.TrimPrefix(tx.CallData, "0x"))
		if err != nil {
			log.Warn("resolve call data invalid hex:", tx.TxKey())
		} else if decoded, err := client.DecodeCall(raw); err != nil {
			log.Warn("resolve DecodeCall err:", tx.TxKey(), err.Error())
		} else {
			tx.CallModule = decoded.Module
			tx.CallMethod = decoded.Method
			tx.CallArgs = decoded.Args
			fields["call_module"] = decoded.Module
			fields["call_method"] = decoded.Method
			fields["call_args"] = decoded.Args
		}
	}

	if tx.Timestamp == 0 && tx.BlockCreated > 0 {
		var ts int64
		err := r.Pool.Do(r.Ctx, "BlockTimestamp", func() error {
			var e error
			ts, e = client.BlockTimestamp(r.Ctx, tx.BlockCreated)
			return e
		})
		if err != nil {
			log.Warn("resolve BlockTimestamp err:", tx.TxKey(), err.Error())
		} else if ts > 0 {
			tx.Timestamp = ts
			fields["timestamp"] = ts
			r.backfillOriginEventDate(tx.TxKey(), ts)
		}
	}
	return fields
}

// backfillOriginEventDate keeps the originating approval event temporally
// consistent with the transaction once the creation date is derived.
func (r *Reconciler) backfillOriginEventDate(txKey string, ts int64) {
	list, err := r.DB.GetEventsByTxKey(txKey)
	if err != nil {
		log.Warn("backfillOriginEventDate GetEventsByTxKey err:", txKey, err.Error())
		return
	}
	for _, v := range list {
		if v.Timestamp != 0 {
			continue
		}
		if v.Status != tables.EventStatusPendingSigned && v.Status != tables.EventStatusSigned {
			continue
		}
		if err := r.DB.UpdateMultisigEventTimestamp(v.Id, ts); err != nil {
			log.Warn("backfillOriginEventDate UpdateMultisigEventTimestamp err:", txKey, err.Error())
		}
		return
	}
}
