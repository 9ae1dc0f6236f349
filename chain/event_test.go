package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEventExecution(t *testing.T) {
	payload := map[string]interface{}{
		"kind":             "execution",
		"multisig_account": "0xaa",
		"acting_account":   "0xbb",
		"call_hash":        "0xcc",
		"timepoint_block":  100,
		"timepoint_index":  2,
		"success":          true,
		"extrinsic_hash":   "0xdd",
		"event_block":      105,
		"event_index":      7,
	}
	ev, err := ParseEvent("polkadot", payload)
	assert.NoError(t, err)
	assert.Equal(t, EventKindExecution, ev.Kind)
	assert.Equal(t, "polkadot", ev.ChainId)
	assert.Equal(t, "0xaa", ev.MultisigAccount)
	assert.Equal(t, "0xbb", ev.ActingAccount)
	assert.Equal(t, uint64(100), ev.Block)
	assert.Equal(t, uint32(2), ev.Index)
	assert.Equal(t, uint64(105), ev.EventBlock)
	assert.False(t, ev.ExecutionFailed())
}

func TestParseEventCancellation(t *testing.T) {
	payload := map[string]interface{}{
		"kind":             "cancellation",
		"multisig_account": "0xaa",
		"acting_account":   "0xbb",
		"call_hash":        "0xcc",
	}
	ev, err := ParseEvent("kusama", payload)
	assert.NoError(t, err)
	assert.Equal(t, EventKindCancellation, ev.Kind)
}

func TestParseEventDispatchError(t *testing.T) {
	payload := map[string]interface{}{
		"kind":             "execution",
		"multisig_account": "0xaa",
		"acting_account":   "0xbb",
		"call_hash":        "0xcc",
		"success":          true,
		"dispatch_error":   "Module(5)",
	}
	ev, err := ParseEvent("polkadot", payload)
	assert.NoError(t, err)
	// success with a nested module error still counts as failed
	assert.True(t, ev.ExecutionFailed())
}

func TestParseEventMalformed(t *testing.T) {
	_, err := ParseEvent("polkadot", map[string]interface{}{
		"kind": "teleport",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event kind")

	_, err = ParseEvent("polkadot", map[string]interface{}{
		"kind":           "execution",
		"acting_account": "0xbb",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing required fields")
}
