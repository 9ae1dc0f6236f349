package chain

import (
	"fmt"
	"github.com/gogf/gf/v2/util/gconv"
)

// Event is the validated form of one raw execution/cancellation payload.
// Raw payloads are duck-typed by the client library; ParseEvent pins the
// required fields down and anything malformed is rejected here instead of
// blowing up deeper in the pipeline.
type Event struct {
	Kind            EventKind `json:"kind"`
	ChainId         string    `json:"chain_id"`
	MultisigAccount string    `json:"multisig_account"`
	ActingAccount   string    `json:"acting_account"`
	CallHash        string    `json:"call_hash"`
	Block           uint64    `json:"block"`
	Index           uint32    `json:"index"`
	Success         bool      `json:"success"`
	DispatchError   string    `json:"dispatch_error"`
	ExtrinsicHash   string    `json:"extrinsic_hash"`
	EventBlock      uint64    `json:"event_block"`
	EventIndex      uint32    `json:"event_index"`
}

type rawEventPayload struct {
	Kind            string `json:"kind"`
	MultisigAccount string `json:"multisig_account"`
	ActingAccount   string `json:"acting_account"`
	CallHash        string `json:"call_hash"`
	TimepointBlock  uint64 `json:"timepoint_block"`
	TimepointIndex  uint32 `json:"timepoint_index"`
	Success         bool   `json:"success"`
	DispatchError   string `json:"dispatch_error"`
	ExtrinsicHash   string `json:"extrinsic_hash"`
	EventBlock      uint64 `json:"event_block"`
	EventIndex      uint32 `json:"event_index"`
}

// ParseEvent validates one raw subscription payload for chainId.
func ParseEvent(chainId string, payload interface{}) (*Event, error) {
	var raw rawEventPayload
	if err := gconv.Struct(payload, &raw); err != nil {
		return nil, fmt.Errorf("gconv.Struct err: %s", err.Error())
	}
	var kind EventKind
	switch raw.Kind {
	case "execution":
		kind = EventKindExecution
	case "cancellation":
		kind = EventKindCancellation
	default:
		return nil, fmt.Errorf("unknown event kind [%s]", raw.Kind)
	}
	if raw.MultisigAccount == "" || raw.ActingAccount == "" || raw.CallHash == "" {
		return nil, fmt.Errorf("event missing required fields: %+v", raw)
	}
	return &Event{
		Kind:            kind,
		ChainId:         chainId,
		MultisigAccount: raw.MultisigAccount,
		ActingAccount:   raw.ActingAccount,
		CallHash:        raw.CallHash,
		Block:           raw.TimepointBlock,
		Index:           raw.TimepointIndex,
		Success:         raw.Success,
		DispatchError:   raw.DispatchError,
		ExtrinsicHash:   raw.ExtrinsicHash,
		EventBlock:      raw.EventBlock,
		EventIndex:      raw.EventIndex,
	}, nil
}

// ExecutionFailed reports whether an execution event carries a nested module
// error. A successful dispatch with a dispatch error still resolves to ERROR.
func (e *Event) ExecutionFailed() bool {
	return !e.Success || e.DispatchError != ""
}
