package platform

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func NewID() string {
	return uuid.New().String()
}

const trackingDigits = 4

// NewTrackingCode generates a human-readable tracking code of the form
// PREFIX-YYYYMMDD-NNNN. The suffix is random, not sequential, so codes
// generated within the same second do not collide; the database unique
// constraint backs the guarantee.
func NewTrackingCode(prefix string, now time.Time) string {
	b := make([]byte, trackingDigits)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	digits := make([]byte, trackingDigits)
	for i := range b {
		digits[i] = '0' + b[i]%10
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), digits)
}
