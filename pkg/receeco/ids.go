package receeco

import (
	"crypto/rand"
	"fmt"
)

const (
	lowerAlphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"
	upperAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	tokenSegmentLength = 13
	shortCodeLength    = 6
)

// GenerateReceiptToken returns a 26 character [a-z0-9] token built from two
// independently generated 13 character segments. Uniqueness is left to the
// server.
func GenerateReceiptToken() (string, error) {
	first, err := randomString(lowerAlphanumeric, tokenSegmentLength)
	if err != nil {
		return "", err
	}
	second, err := randomString(lowerAlphanumeric, tokenSegmentLength)
	if err != nil {
		return "", err
	}
	return first + second, nil
}

// GenerateShortCode returns a 6 character [A-Z0-9] code.
func GenerateShortCode() (string, error) {
	return randomString(upperAlphanumeric, shortCodeLength)
}

// randomString draws n characters from alphabet using crypto/rand. Bytes
// above the largest multiple of len(alphabet) are rejected so every
// character is equally likely.
func randomString(alphabet string, n int) (string, error) {
	size := len(alphabet)
	limit := 256 - (256 % size)

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%size])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
