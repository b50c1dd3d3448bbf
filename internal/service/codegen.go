package service

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"

	apperrors "github.com/forsa/checkin-server-go/internal/errors"
)

const (
	// Digits plus uppercase letters minus I and O, 34 symbols.
	checkInCodeChars = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	checkInCodeLen   = 10

	CodePrefix        = "FC-"
	ScanPayloadPrefix = "forsa_checkin:"
)

var checkInCodePattern = regexp.MustCompile(`^FC-[0-9A-HJ-NP-Z]{10}$`)

// GenerateCheckInCode returns a fresh candidate code. It is a pure generator;
// uniqueness is enforced by the reservation store, not here.
func GenerateCheckInCode() string {
	chars := []byte(checkInCodeChars)
	body := make([]byte, checkInCodeLen)

	for i := 0; i < checkInCodeLen; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		body[i] = chars[n.Int64()]
	}

	return CodePrefix + string(body)
}

// NormalizeScannedCode strips the QR scan payload prefix when present and
// validates the remaining code format. Manual entry passes the bare code.
func NormalizeScannedCode(input string) (string, error) {
	code := strings.TrimSpace(input)
	code = strings.TrimPrefix(code, ScanPayloadPrefix)
	code = strings.ToUpper(code)

	if !checkInCodePattern.MatchString(code) {
		return "", apperrors.MalformedCode()
	}
	return code, nil
}

// ScanPayload renders the string embedded in a member's QR image.
func ScanPayload(code string) string {
	return ScanPayloadPrefix + code
}
