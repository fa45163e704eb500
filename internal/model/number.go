package model

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"
)

// NumberGenerator produces candidate order numbers. Uniqueness is enforced by
// storage; a generator only has to make collisions unlikely.
type NumberGenerator func(now time.Time) string

// GenerateOrderNumber returns ORD-<last 8 digits of unix millis>-<3 random digits>.
func GenerateOrderNumber(now time.Time) string {
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	return fmt.Sprintf("ORD-%s-%03d", millis, rand.IntN(1000))
}
