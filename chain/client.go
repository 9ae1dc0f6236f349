package chain

import (
	"context"
)

type ConnStatus int

const (
	ConnStatusDisconnected ConnStatus = 0
	ConnStatusConnected    ConnStatus = 1
)

// EventKind tags the two chain event streams this service subscribes to.
type EventKind int

const (
	EventKindExecution    EventKind = 0
	EventKindCancellation EventKind = 1
)

func (k EventKind) String() string {
	switch k {
	case EventKindExecution:
		return "execution"
	case EventKindCancellation:
		return "cancellation"
	default:
		return "unknown"
	}
}

type Unsubscribe func()

// DecodedCall is one decoded inner call of a multisig transaction.
type DecodedCall struct {
	Module string `json:"module"`
	Method string `json:"method"`
	Args   string `json:"args"`
}

// Client is the per-network chain connection this service consumes. The RPC
// transport, reconnect handling and payload decoding live behind it; every
// method that touches the network takes a context.
type Client interface {
	ChainId() string
	AddressPrefix() uint16
	ConnStatus() ConnStatus

	// SubscribeMultisigStorage watches the multisig pallet storage entry of
	// one multisig address.
	SubscribeMultisigStorage(ctx context.Context, address string, cb func(payload interface{})) (Unsubscribe, error)

	// SubscribeEvents subscribes to execution or cancellation events whose
	// destination matches the given multisig address. Payloads arrive as the
	// client library decodes them; shape validation happens at the correlator
	// boundary.
	SubscribeEvents(ctx context.Context, kind EventKind, address string, cb func(payload interface{})) (Unsubscribe, error)

	// QueryCallData reads the call bytes of extrinsic `index` in block `block`.
	QueryCallData(ctx context.Context, block uint64, index uint32) ([]byte, error)

	// DecodeCall decodes raw call bytes into a structured call.
	DecodeCall(data []byte) (*DecodedCall, error)

	// BlockTimestamp returns the on-chain wall-clock timestamp of a block in
	// milliseconds.
	BlockTimestamp(ctx context.Context, block uint64) (int64, error)
}
