package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
)

const (
	// CodeLength is the canonical length of a room code.
	CodeLength = 6

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	codeCharsetLen = big.NewInt(int64(len(codeAlphabet)))

	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoAvailableCodes = errors.New("no available room codes")
)

// Room is a point-in-time snapshot of a room's metadata. The live state is
// owned exclusively by the registry; snapshots are what leave it.
type Room struct {
	Code           string    `json:"code"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	MemberCount    int       `json:"memberCount"`
}

// GenerateCode produces a random room code. Uniqueness against live rooms is
// the caller's responsibility.
func GenerateCode() (string, error) {
	var sb strings.Builder
	sb.Grow(CodeLength)

	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, codeCharsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}

	return sb.String(), nil
}

// NormalizeCode canonicalizes an inbound room code before any lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
