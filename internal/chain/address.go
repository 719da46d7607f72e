package chain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

var ErrInvalidAddress = errors.New("invalid address")

// ChecksumAddress validates a 20-byte hex address and returns its EIP-55
// mixed-case form. Input case is ignored.
func ChecksumAddress(address string) (string, error) {
	hexPart, ok := strings.CutPrefix(address, "0x")
	if !ok {
		hexPart, ok = strings.CutPrefix(address, "0X")
	}
	if !ok || len(hexPart) != 40 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	lower := strings.ToLower(hexPart)
	if _, err := hex.DecodeString(lower); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := make([]byte, 0, 42)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && nibble&0x0f >= 8 {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out), nil
}

func IsAddress(address string) bool {
	_, err := ChecksumAddress(address)
	return err == nil
}
