package store

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/util"
)

// FileStore keeps the table as a JSON document mapping state keys to action values
type FileStore struct {
	Path string
}

var _ Store = &FileStore{}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) String() string {
	return f.Path
}

func (f *FileStore) Load(_ context.Context) (*policies.ValueTable, error) {
	bs, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", f.Path)
	}
	table := policies.NewValueTable()
	if err := json.Unmarshal(bs, table); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", f.Path)
	}
	return table, nil
}

func (f *FileStore) Save(_ context.Context, table *policies.ValueTable) error {
	bs, err := json.Marshal(table)
	if err != nil {
		return errors.Wrap(err, "failed to encode value table")
	}
	return util.WriteFileAtomic(f.Path, bs)
}
