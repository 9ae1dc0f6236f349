package chain

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/assert"
)

const testAccountId = "0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48"

func TestAddressRoundTrip(t *testing.T) {
	for _, prefix := range []uint16{0, 2, 42} {
		addr, err := ToAddress(testAccountId, prefix)
		assert.NoError(t, err)
		assert.NotEmpty(t, addr)

		got, err := ToAccountId(addr, prefix)
		assert.NoError(t, err)
		assert.Equal(t, testAccountId, got)
	}
}

func TestAddressPrefixMismatch(t *testing.T) {
	addr, err := ToAddress(testAccountId, 0)
	assert.NoError(t, err)

	_, err = ToAccountId(addr, 2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "prefix mismatch")
}

func TestAddressChecksum(t *testing.T) {
	addr, err := ToAddress(testAccountId, 42)
	assert.NoError(t, err)

	// corrupt one payload byte, keep length: checksum must catch it
	raw := base58.Decode(addr)
	raw[10] ^= 0x01
	_, err = ToAccountId(base58.Encode(raw), 42)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestAddressInvalidInput(t *testing.T) {
	_, err := ToAddress("0x1234", 0)
	assert.Error(t, err)

	_, err = ToAddress(strings.Repeat("zz", 32), 0)
	assert.Error(t, err)

	_, err = ToAddress(testAccountId, 64)
	assert.Error(t, err)

	_, err = ToAccountId("abc", 0)
	assert.Error(t, err)
}
