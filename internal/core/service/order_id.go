package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NextOrderID returns a journal-unique order id. The zero-padded nanosecond
// timestamp makes ids sort naturally by placement time; the uuid suffix
// disambiguates calls landing on the same tick. Never blocks, never fails.
func NextOrderID() string {
	return fmt.Sprintf("ORD-%020d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}
