package fact

import (
	"database/sql"
	"time"
)

// Fact is a single piece of content that can be sent to subscribers.
// Facts are created by the catalog import and are never changed by the
// daily send, except for attaching an image.
type Fact struct {
	ID        int64
	Text      string
	Sources   sql.NullString // Free-form attribution, optional
	ImagePath sql.NullString
	CreatedAt time.Time
}
