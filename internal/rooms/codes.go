package rooms

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet leaves out 0/O and 1/I/L so codes read aloud without
// ambiguity.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 4

// GenerateCode mints a short shareable room identifier.
func GenerateCode() (string, error) {
	span := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
