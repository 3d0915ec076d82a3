// Package format holds the small formatting and identifier helpers shared
// by the storefront pages and the payment flow.
//
// Amounts are handled as integer Chilean pesos (CLP has no cents), so
// formatting is purely a matter of grouping digits the es-CL way.
package format

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CLP renders an integer peso amount as es-CL currency, e.g. 93980 -> "$93.980".
func CLP(amount int) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := []byte{}
	if amount == 0 {
		digits = append(digits, '0')
	}
	for amount > 0 {
		digits = append(digits, byte('0'+amount%10))
		amount /= 10
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i := len(digits) - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
		if i > 0 && i%3 == 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// Date renders a timestamp the way the storefront displays dates (dd-mm-yyyy,
// the es-CL short form).
func Date(t time.Time) string {
	return t.Format("02-01-2006")
}

// BuyOrder generates a merchant-side order identifier for a single payment
// attempt, e.g. "ORD-1718040000000-7F3A2B1C". The millisecond timestamp keeps
// identifiers sortable; the random suffix keeps two attempts within the same
// millisecond from colliding.
func BuyOrder() string {
	return "ORD-" + millis() + "-" + randSuffix()
}

// SessionID generates the gateway-facing session correlation identifier,
// e.g. "SES_1718040000000_7f3a2b1c".
func SessionID() string {
	return "SES_" + millis() + "_" + strings.ToLower(randSuffix())
}

func millis() string {
	ms := time.Now().UnixMilli()
	buf := []byte{}
	if ms == 0 {
		return "0"
	}
	for ms > 0 {
		buf = append(buf, byte('0'+ms%10))
		ms /= 10
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// randSuffix returns 8 uppercase hex characters sourced from a v4 UUID.
// 8 characters keep the collision odds negligible even for bursts of
// attempts landing on the same millisecond.
func randSuffix() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
