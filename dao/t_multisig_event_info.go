package dao

import (
	"multisig_svr/tables"

	"gorm.io/gorm"
)

func (d *DbDao) GetEventsByTxKey(txKey string) (list []tables.TableMultisigEventInfo, err error) {
	err = d.db.Where("tx_key=?", txKey).Order("id").Find(&list).Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	return
}

func (d *DbDao) GetEventsByTxKeys(txKeys []string) (list []tables.TableMultisigEventInfo, err error) {
	if len(txKeys) == 0 {
		return
	}
	err = d.db.Where("tx_key IN(?)", txKeys).Order("id").Find(&list).Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	return
}

// GetUpgradeableEvent finds the one event row of a signatory whose status is
// still in the pending/final family matching the incoming chain event.
func (d *DbDao) GetUpgradeableEvent(txKey, accountId string, family []tables.EventStatus) (ev tables.TableMultisigEventInfo, err error) {
	err = d.db.Where("tx_key=? AND account_id=? AND status IN(?)", txKey, accountId, family).
		Limit(1).Find(&ev).Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	return
}

func (d *DbDao) CreateMultisigEvent(ev *tables.TableMultisigEventInfo) error {
	return d.db.Create(ev).Error
}

func (d *DbDao) UpgradeMultisigEvent(id uint64, status tables.EventStatus, extrinsicHash string, eventBlock uint64, eventIndex uint32) error {
	return d.db.Model(tables.TableMultisigEventInfo{}).
		Where("id=?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"extrinsic_hash": extrinsicHash,
			"event_block":    eventBlock,
			"event_index":    eventIndex,
		}).Error
}

func (d *DbDao) UpdateMultisigEventTimestamp(id uint64, timestamp int64) error {
	return d.db.Model(tables.TableMultisigEventInfo{}).
		Where("id=?", id).
		Updates(map[string]interface{}{
			"timestamp": timestamp,
		}).Error
}
