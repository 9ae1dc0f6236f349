package tables

import (
	"encoding/json"
)

// TableMultisigAccountInfo mirrors the wallet subsystem's multisig account
// records. This service only reads it: the account set drives which
// subscriptions stay open per chain.
type TableMultisigAccountInfo struct {
	Id           uint64 `json:"id" gorm:"column:id;primary_key;AUTO_INCREMENT"`
	AccountId    string `json:"account_id" gorm:"column:account_id"`
	ChainId      string `json:"chain_id" gorm:"column:chain_id"`
	Name         string `json:"name" gorm:"column:name"`
	Threshold    uint32 `json:"threshold" gorm:"column:threshold"`
	Signatories  string `json:"signatories" gorm:"column:signatories"`
	MessagingIds string `json:"messaging_ids" gorm:"column:messaging_ids"`
}

const (
	TableNameMultisigAccountInfo = "t_multisig_account_info"
)

func (t *TableMultisigAccountInfo) TableName() string {
	return TableNameMultisigAccountInfo
}

func (t *TableMultisigAccountInfo) SignatoryList() []string {
	var list []string
	if t.Signatories == "" {
		return list
	}
	if err := json.Unmarshal([]byte(t.Signatories), &list); err != nil {
		return nil
	}
	return list
}

func (t *TableMultisigAccountInfo) MessagingIdList() []string {
	var list []string
	if t.MessagingIds == "" {
		return list
	}
	if err := json.Unmarshal([]byte(t.MessagingIds), &list); err != nil {
		return nil
	}
	return list
}
