package order

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const numberAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateOrderNumber builds a collision-resistant order number of the form
// ORD-<millis base36>-<6 random base36 chars>, uppercased.
func GenerateOrderNumber() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)

	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return strings.ToUpper(fmt.Sprintf("ORD-%s-%06d", ts, time.Now().UnixNano()%1000000))
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return strings.ToUpper(fmt.Sprintf("ORD-%s-%s", ts, buf))
}
