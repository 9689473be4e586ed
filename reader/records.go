package reader

import (
	"context"

	"github.com/decibelcooper/mtopcorr/event"
)

// Records serves events held in memory.
type Records []*event.Record

func (rs Records) Name() string { return "memory" }

func (rs Records) Entries() int64 { return int64(len(rs)) }

func (rs Records) Scan(ctx context.Context, beg, end int64, fn func(idx int64, rec *event.Record) error) error {
	if end > int64(len(rs)) {
		end = int64(len(rs))
	}
	for i := beg; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i, rs[i]); err != nil {
			return err
		}
	}
	return nil
}
