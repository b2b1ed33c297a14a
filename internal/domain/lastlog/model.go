// Package lastlog exposes the previous cycle's captured log output:
// the live snapshot endpoints plus the historical snapshot archive.
package lastlog

import (
	"time"

	"github.com/google/uuid"
)

// Archive is one boot cycle's frozen snapshot as stored in the
// database. Content is only populated when a single record is fetched.
type Archive struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CapturedAt time.Time `db:"captured_at" json:"captured_at"`
	Size       int       `db:"size" json:"size"`
	Content    []byte    `db:"content" json:"-"`
}
