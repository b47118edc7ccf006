package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable by
// creation time, which is what keeps comments and chat messages in send
// order under their range keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
