package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// PseudonymID derives the stable anonymized patient identifier: the lowercase
// hex SHA-256 digest of the normalized RUT with the salt appended. The same
// identifier and salt always produce the same digest.
//
// An empty or all-whitespace salt is refused rather than silently degrading
// to an unsalted hash.
func PseudonymID(rawRUT, salt string) (string, error) {
	if strings.TrimSpace(salt) == "" {
		return "", NewSaltUnconfiguredError()
	}
	sum := sha256.Sum256([]byte(NormalizeRUT(rawRUT) + salt))
	return hex.EncodeToString(sum[:]), nil
}
