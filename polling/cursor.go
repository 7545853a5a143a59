// Package polling implements the cursor contract staff dashboards use to
// fetch only rows created since their previous poll.
//
// A zero Cursor means initial load: newest rows first. A non-zero Cursor
// means polling: only rows strictly after the cursor, oldest first, so the
// client can advance to the last row it received. Rows are ordered by
// (createdAt, seq); seq breaks ties between rows stored with the same
// timestamp.
package polling

import (
	"fmt"
	"strconv"
	"time"
)

// Row is anything with a creation time and a store-assigned sequence.
type Row interface {
	GetCreatedAt() time.Time
	GetSeq() int64
}

type Cursor struct {
	Since time.Time
	Seq   int64
}

func (c Cursor) IsZero() bool {
	return c.Since.IsZero()
}

// After reports whether a row with the given position comes strictly after c.
// With Seq == 0 only the timestamp is compared.
func (c Cursor) After(createdAt time.Time, seq int64) bool {
	if c.IsZero() {
		return true
	}
	if createdAt.After(c.Since) {
		return true
	}
	if c.Seq > 0 && createdAt.Equal(c.Since) {
		return seq > c.Seq
	}
	return false
}

// Parse reads the since / sinceSeq query values. Both empty yields the zero cursor.
func Parse(since, sinceSeq string) (Cursor, error) {
	if since == "" {
		if sinceSeq != "" {
			return Cursor{}, fmt.Errorf("sinceSeq requires since")
		}
		return Cursor{}, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, since)
	if err != nil {
		return Cursor{}, fmt.Errorf("since must be an ISO-8601 timestamp: %w", err)
	}
	cur := Cursor{Since: ts.UTC()}
	if sinceSeq != "" {
		seq, err := strconv.ParseInt(sinceSeq, 10, 64)
		if err != nil || seq < 0 {
			return Cursor{}, fmt.Errorf("sinceSeq must be a non-negative integer")
		}
		cur.Seq = seq
	}
	return cur, nil
}

// Next returns the cursor a client should send on its following poll:
// the greatest (createdAt, seq) among rows, or cur when rows is empty.
func Next[T Row](cur Cursor, rows []T) Cursor {
	next := cur
	for _, r := range rows {
		pos := Cursor{Since: r.GetCreatedAt(), Seq: r.GetSeq()}
		if next.IsZero() || next.less(pos) {
			next = pos
		}
	}
	return next
}

func (c Cursor) less(o Cursor) bool {
	if c.Since.Equal(o.Since) {
		return c.Seq < o.Seq
	}
	return c.Since.Before(o.Since)
}

// Format renders the cursor as query values.
func (c Cursor) Format() (since, sinceSeq string) {
	if c.IsZero() {
		return "", ""
	}
	return c.Since.UTC().Format(time.RFC3339Nano), strconv.FormatInt(c.Seq, 10)
}
