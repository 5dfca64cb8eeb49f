package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/zeu5/tictactoe-rl/policies"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

const DefaultRedisKey = "tictactoe:value_table"

// RedisStore keeps the table in a single hash, one field per state key
// holding the JSON object of that state's action values
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

var _ Store = &RedisStore{}

func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{
		client: client,
		key:    key,
	}
}

// NewRedisStoreFromAddr connects to a single redis node
func NewRedisStoreFromAddr(addr, key string) *RedisStore {
	return NewRedisStore(redis.NewClient(&redis.Options{
		Addr: addr,
	}), key)
}

func (r *RedisStore) String() string {
	return fmt.Sprintf("redis hash %s", r.key)
}

func (r *RedisStore) Load(ctx context.Context) (*policies.ValueTable, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", r.key)
	}
	if len(fields) == 0 {
		return nil, errors.Errorf("%s is empty or missing", r.key)
	}
	return decodeFields(fields)
}

func (r *RedisStore) Save(ctx context.Context, table *policies.ValueTable) error {
	fields, err := encodeFields(table)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, r.key, fields)
		}
		return nil
	})
	return errors.Wrapf(err, "failed to write %s", r.key)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func encodeFields(table *policies.ValueTable) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, table.Len())
	for state, values := range table.Snapshot() {
		bs, err := json.Marshal(values)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode state %s", state)
		}
		fields[string(state)] = string(bs)
	}
	return fields, nil
}

func decodeFields(fields map[string]string) (*policies.ValueTable, error) {
	table := policies.NewValueTable()
	for key, raw := range fields {
		state, err := tictactoe.ParseStateKey(key)
		if err != nil {
			return nil, err
		}
		values := make(map[tictactoe.Position]float64)
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, errors.Wrapf(err, "failed to decode state %s", key)
		}
		table.Put(state, values)
	}
	return table, nil
}
