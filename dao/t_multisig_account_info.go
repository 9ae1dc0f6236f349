package dao

import (
	"multisig_svr/tables"

	"gorm.io/gorm"
)

func (d *DbDao) GetMultisigAccountList() (list []tables.TableMultisigAccountInfo, err error) {
	err = d.db.Order("chain_id,account_id").Find(&list).Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	return
}

func (d *DbDao) GetMultisigAccount(accountId, chainId string) (acc tables.TableMultisigAccountInfo, err error) {
	err = d.db.Where("account_id=? AND chain_id=?", accountId, chainId).Limit(1).Find(&acc).Error
	if err == gorm.ErrRecordNotFound {
		err = nil
	}
	return
}
