package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

func NewDispatchID() string {
	// ULID is sortable, which keeps log searches and the outcome queue in send order
	t := time.Now().UTC()
	return "disp_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
