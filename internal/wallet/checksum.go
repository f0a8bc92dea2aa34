package wallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ChecksumAddress converts addr to its canonical mixed-case checksummed form.
// The case of each hex letter is derived from the keccak-256 hash of the
// lowercase address, so a single transposed character is detectable.
func ChecksumAddress(addr string) (string, error) {
	stripped := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(addr)), "0x")
	if len(stripped) != 40 {
		return "", fmt.Errorf("address must be 20 bytes, got %d hex chars", len(stripped))
	}
	if _, err := hex.DecodeString(stripped); err != nil {
		return "", fmt.Errorf("address is not valid hex: %w", err)
	}

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(stripped))
	hash := hasher.Sum(nil)

	out := make([]byte, 40)
	for i := 0; i < 40; i++ {
		c := stripped[i]
		if c >= 'a' && c <= 'f' {
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x08 != 0 {
				c = c - 'a' + 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out), nil
}

// IsValidAddress reports whether addr parses as a 20-byte hex address.
func IsValidAddress(addr string) bool {
	_, err := ChecksumAddress(addr)
	return err == nil
}
