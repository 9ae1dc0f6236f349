package dao

import (
	"multisig_svr/tables"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *DbDao) GetMultisigTx(accountId, chainId, callHash string, blockCreated uint64, indexCreated uint32) (tx tables.TableMultisigTxInfo, err error) {
	err = d.db.Where("account_id=? AND chain_id=? AND call_hash=? AND block_created=? AND index_created=?",
		accountId, chainId, callHash, blockCreated, indexCreated).Limit(1).Find(&tx).Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	return
}

func (d *DbDao) GetMultisigTxById(id uint64) (tx tables.TableMultisigTxInfo, err error) {
	err = d.db.Where("id=?", id).Limit(1).Find(&tx).Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	return
}

func (d *DbDao) CreateMultisigTx(tx *tables.TableMultisigTxInfo) error {
	return d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account_id"}, {Name: "chain_id"}, {Name: "call_hash"},
			{Name: "block_created"}, {Name: "index_created"},
		},
		DoNothing: true,
	}).Create(tx).Error
}

func (d *DbDao) UpdateMultisigTxStatus(id uint64, status tables.TxStatus) error {
	return d.db.Model(tables.TableMultisigTxInfo{}).
		Where("id=? AND status=?", id, tables.TxStatusSigning).
		Updates(map[string]interface{}{
			"status": status,
		}).Error
}

func (d *DbDao) UpdateMultisigTxFields(id uint64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return d.db.Model(tables.TableMultisigTxInfo{}).
		Where("id=?", id).Updates(fields).Error
}

func (d *DbDao) GetMultisigTxList(accountIds []string, limit, offset int) (list []tables.TableMultisigTxInfo, err error) {
	if len(accountIds) == 0 {
		return
	}
	err = d.db.Where("account_id IN(?)", accountIds).
		Order("timestamp DESC,id DESC").Limit(limit).Offset(offset).Find(&list).Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	return
}

func (d *DbDao) GetMultisigTxTotal(accountIds []string) (total int64, err error) {
	if len(accountIds) == 0 {
		return
	}
	err = d.db.Model(tables.TableMultisigTxInfo{}).
		Where("account_id IN(?)", accountIds).Count(&total).Error
	return
}

func (d *DbDao) GetSigningMultisigTxList(accountIds []string) (list []tables.TableMultisigTxInfo, err error) {
	if len(accountIds) == 0 {
		return
	}
	err = d.db.Where("account_id IN(?) AND status=?", accountIds, tables.TxStatusSigning).
		Find(&list).Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	return
}

// GetMultisigTxNeedRepair returns transactions with missing metadata: no
// creation date or an undecoded call body. The repair pass backfills both.
func (d *DbDao) GetMultisigTxNeedRepair(limit int) (list []tables.TableMultisigTxInfo, err error) {
	err = d.db.Where("timestamp=0 OR call_method=''").
		Order("id").Limit(limit).Find(&list).Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	return
}
