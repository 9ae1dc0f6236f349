package tables

type EventStatus int

const (
	EventStatusPendingSigned    EventStatus = 0
	EventStatusSigned           EventStatus = 1
	EventStatusPendingCancelled EventStatus = 2
	EventStatusCancelled        EventStatus = 3
)

// Pending reports whether the status still awaits on-chain confirmation.
func (e EventStatus) Pending() bool {
	return e == EventStatusPendingSigned || e == EventStatusPendingCancelled
}

// SignedFamily returns the pending/final status pair for an execution event,
// CancelledFamily the pair for a cancellation event. The correlator upgrades
// a matching pending row in place instead of appending a second row for the
// same signatory action.
func SignedFamily() []EventStatus {
	return []EventStatus{EventStatusPendingSigned, EventStatusSigned}
}

func CancelledFamily() []EventStatus {
	return []EventStatus{EventStatusPendingCancelled, EventStatusCancelled}
}

type TableMultisigEventInfo struct {
	Id            uint64      `json:"id" gorm:"column:id;primary_key;AUTO_INCREMENT"`
	TxKey         string      `json:"tx_key" gorm:"column:tx_key"`
	AccountId     string      `json:"account_id" gorm:"column:account_id"`
	Status        EventStatus `json:"status" gorm:"column:status"`
	Timestamp     int64       `json:"timestamp" gorm:"column:timestamp"`
	ExtrinsicHash string      `json:"extrinsic_hash" gorm:"column:extrinsic_hash"`
	EventBlock    uint64      `json:"event_block" gorm:"column:event_block"`
	EventIndex    uint32      `json:"event_index" gorm:"column:event_index"`
}

const (
	TableNameMultisigEventInfo = "t_multisig_event_info"
)

func (t *TableMultisigEventInfo) TableName() string {
	return TableNameMultisigEventInfo
}
