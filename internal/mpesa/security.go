package mpesa

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const timestampLayout = "20060102150405"

// Timestamp formats t in UTC as YYYYMMDDHHMMSS.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Password signs a request: hex(sha256(shortCode + passkey + timestamp)).
func Password(shortCode, passkey, timestamp string) string {
	sum := sha256.Sum256([]byte(shortCode + passkey + timestamp))
	return hex.EncodeToString(sum[:])
}

// NormalizePhone turns a local 07XXXXXXXX number into 2547XXXXXXXX.
// Spaces and a leading plus sign are dropped; other input passes through.
func NormalizePhone(phone string) string {
	phone = strings.Join(strings.Fields(phone), "")
	phone = strings.TrimPrefix(phone, "+")

	if len(phone) == 10 && strings.HasPrefix(phone, "0") {
		return "254" + phone[1:]
	}
	return phone
}

func validPhone(phone string) bool {
	if len(phone) != 12 || !strings.HasPrefix(phone, "254") {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
