// Package store persists value tables. A table that cannot be loaded is
// replaced by an empty one, a missing or corrupt file never stops training.
package store

import (
	"context"

	"github.com/golang/glog"
	"github.com/zeu5/tictactoe-rl/policies"
)

type Store interface {
	Load(context.Context) (*policies.ValueTable, error)
	Save(context.Context, *policies.ValueTable) error
	// String describes the location of the table for logs
	String() string
}

// LoadOrEmpty loads the table from s, any failure yields an empty table
func LoadOrEmpty(ctx context.Context, s Store) *policies.ValueTable {
	table, err := s.Load(ctx)
	if err != nil {
		glog.Warningf("value table not loaded from %s, starting from an empty one: %s", s, err)
		return policies.NewValueTable()
	}
	glog.Infof("value table loaded from %s with %d states", s, table.Len())
	return table
}
