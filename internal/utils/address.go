// internal/utils/address.go
package utils

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

var ErrInvalidAddress = errors.New("address must be 0x followed by 40 hex characters")

// NormalizeAddress returns the canonical lower-case form of an account
// address. Mixed-case input must carry a valid EIP-55 checksum.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return "", ErrInvalidAddress
	}
	body := addr[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return "", ErrInvalidAddress
	}

	lower := strings.ToLower(body)
	if body != lower && body != strings.ToUpper(body) {
		if ChecksumAddress("0x"+lower) != "0x"+body {
			return "", errors.New("address checksum mismatch")
		}
	}
	return "0x" + lower, nil
}

func IsAddress(addr string) bool {
	_, err := NormalizeAddress(addr)
	return err == nil
}

// ChecksumAddress renders a lower-case address in EIP-55 mixed case.
func ChecksumAddress(addr string) string {
	body := strings.ToLower(strings.TrimPrefix(addr, "0x"))

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(body))
	digest := hex.EncodeToString(h.Sum(nil))

	out := []byte(body)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			out[i] = c - 32
		}
	}
	return "0x" + string(out)
}
