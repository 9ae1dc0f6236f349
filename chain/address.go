package chain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

// ss58 checksum preimage prefix, fixed by the address format.
var ss58Prefix = []byte("SS58PRE")

const accountIdLen = 32

// ToAddress encodes a 0x-prefixed 32-byte account id into the chain's
// address format for the given network prefix.
func ToAddress(accountId string, prefix uint16) (string, error) {
	pub, err := accountIdBytes(accountId)
	if err != nil {
		return "", err
	}
	if prefix >= 64 {
		return "", fmt.Errorf("unsupported address prefix [%d]", prefix)
	}
	payload := append([]byte{byte(prefix)}, pub...)
	sum := addressChecksum(payload)
	return base58.Encode(append(payload, sum...)), nil
}

// ToAccountId decodes an address back to its 0x-prefixed account id,
// verifying the checksum and the expected network prefix.
func ToAccountId(address string, prefix uint16) (string, error) {
	raw := base58.Decode(address)
	if len(raw) != 1+accountIdLen+2 {
		return "", fmt.Errorf("address length invalid [%s]", address)
	}
	if raw[0] != byte(prefix) {
		return "", fmt.Errorf("address prefix mismatch: got %d want %d", raw[0], prefix)
	}
	payload, sum := raw[:1+accountIdLen], raw[1+accountIdLen:]
	want := addressChecksum(payload)
	if sum[0] != want[0] || sum[1] != want[1] {
		return "", fmt.Errorf("address checksum mismatch [%s]", address)
	}
	return "0x" + hex.EncodeToString(payload[1:]), nil
}

func accountIdBytes(accountId string) ([]byte, error) {
	s := strings.TrimPrefix(accountId, "0x")
	pub, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("account id invalid [%s]: %s", accountId, err.Error())
	}
	if len(pub) != accountIdLen {
		return nil, fmt.Errorf("account id length invalid [%s]", accountId)
	}
	return pub, nil
}

func addressChecksum(payload []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write(ss58Prefix)
	h.Write(payload)
	return h.Sum(nil)[:2]
}
