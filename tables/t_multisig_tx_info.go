package tables

import (
	"fmt"
)

type TxStatus int

const (
	TxStatusSigning     TxStatus = 0
	TxStatusExecuted    TxStatus = 1
	TxStatusError       TxStatus = 2
	TxStatusCancelled   TxStatus = 3
	TxStatusEstablished TxStatus = 4
)

// Terminal reports whether no further status transition is allowed.
func (t TxStatus) Terminal() bool {
	return t != TxStatusSigning
}

type TableMultisigTxInfo struct {
	Id           uint64   `json:"id" gorm:"column:id;primary_key;AUTO_INCREMENT"`
	AccountId    string   `json:"account_id" gorm:"column:account_id"`
	ChainId      string   `json:"chain_id" gorm:"column:chain_id"`
	CallHash     string   `json:"call_hash" gorm:"column:call_hash"`
	BlockCreated uint64   `json:"block_created" gorm:"column:block_created"`
	IndexCreated uint32   `json:"index_created" gorm:"column:index_created"`
	CallData     string   `json:"call_data" gorm:"column:call_data"`
	CallModule   string   `json:"call_module" gorm:"column:call_module"`
	CallMethod   string   `json:"call_method" gorm:"column:call_method"`
	CallArgs     string   `json:"call_args" gorm:"column:call_args"`
	Status       TxStatus `json:"status" gorm:"column:status"`
	Timestamp    int64    `json:"timestamp" gorm:"column:timestamp"`
	Description  string   `json:"description" gorm:"column:description"`
}

const (
	TableNameMultisigTxInfo = "t_multisig_tx_info"
)

func (t *TableMultisigTxInfo) TableName() string {
	return TableNameMultisigTxInfo
}

// TxKey is the composite natural key of one multisig call attempt. A given
// multisig+hash pair can be reused across unrelated timepoints, so the
// creating timepoint is part of the identity.
func (t *TableMultisigTxInfo) TxKey() string {
	return MultisigTxKey(t.AccountId, t.ChainId, t.CallHash, t.BlockCreated, t.IndexCreated)
}

// HasDecodedCall reports whether the inner call body has been decoded.
func (t *TableMultisigTxInfo) HasDecodedCall() bool {
	return t.CallMethod != ""
}

func MultisigTxKey(accountId, chainId, callHash string, block uint64, index uint32) string {
	return fmt.Sprintf("%s-%s-%s-%d-%d", accountId, chainId, callHash, block, index)
}
