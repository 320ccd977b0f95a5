package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

// Register client
func init() {
	_ = register(&Redis{}, "redis")
}

var (
	_ core.Adapter  = (*Redis)(nil)
	_ core.Endpoint = (*redisEndpoint)(nil)
)

type Redis struct{}

func (r *Redis) Connect(params *core.EndpointParams) (core.Endpoint, error) {
	if params.Table == "" {
		return nil, ErrMissingTable
	}

	opt, err := redis.ParseURL(params.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to redis database: %v", err)
	}

	return newRedisEndpoint(redis.NewClient(opt), params.Table), nil
}

// redisEndpoint keeps every record in a hash "<table>:<id>" and the ids in
// the sorted set "<table>:ids", scored by creation time.
type redisEndpoint struct {
	redis *redis.Client
	table string
	newID func() string
	now   func() time.Time
}

func newRedisEndpoint(client *redis.Client, table string) *redisEndpoint {
	return &redisEndpoint{
		redis: client,
		table: table,
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
}

func (e *redisEndpoint) idsKey() string {
	return e.table + ":ids"
}

func (e *redisEndpoint) recordKey(id core.RecordID) string {
	return e.table + ":" + string(id)
}

// load reads the hashes of ids in a single round trip.
func (e *redisEndpoint) load(ctx context.Context, ids []string) ([]*core.Record, error) {
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err := e.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, e.recordKey(core.RecordID(id)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]*core.Record, 0, len(ids))
	for i, cmd := range cmds {
		record := core.NewRecord(core.RecordID(ids[i]), nil)
		for field, raw := range cmd.Val() {
			var value any
			if err := json.Unmarshal([]byte(raw), &value); err != nil {
				// plain strings written by other tools
				value = raw
			}
			record.Fields[field] = value
		}
		records = append(records, record)
	}

	return records, nil
}

func matchesQuery(r *core.Record, query string) bool {
	if strings.Contains(strings.ToLower(string(r.ID)), query) {
		return true
	}
	for _, v := range r.Fields {
		if strings.Contains(strings.ToLower(core.ToText(v)), query) {
			return true
		}
	}
	return false
}

func (e *redisEndpoint) Fetch(ctx context.Context, req *core.FetchRequest) (*core.FetchResponse, error) {
	if req.Limit <= 0 {
		return &core.FetchResponse{}, nil
	}

	if req.Query == "" {
		total, err := e.redis.ZCard(ctx, e.idsKey()).Result()
		if err != nil {
			return nil, err
		}

		ids, err := e.redis.ZRevRange(ctx, e.idsKey(), int64(req.Offset), int64(req.Offset+req.Limit-1)).Result()
		if err != nil {
			return nil, err
		}

		records, err := e.load(ctx, ids)
		if err != nil {
			return nil, err
		}

		return &core.FetchResponse{Data: records, Total: int(total)}, nil
	}

	// searching needs every record
	ids, err := e.redis.ZRevRange(ctx, e.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records, err := e.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(req.Query)
	var matching []*core.Record
	for _, r := range records {
		if matchesQuery(r, query) {
			matching = append(matching, r)
		}
	}

	from := min(max(req.Offset, 0), len(matching))
	to := min(from+req.Limit, len(matching))

	return &core.FetchResponse{Data: matching[from:to], Total: len(matching)}, nil
}

func (e *redisEndpoint) Create(ctx context.Context, record *core.Record) (core.RecordID, error) {
	id := core.RecordID(e.newID())

	values := make(map[string]any, len(record.Fields))
	for field, value := range record.Fields {
		b, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", field, err)
		}
		values[field] = string(b)
	}

	_, err := e.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(values) > 0 {
			pipe.HSet(ctx, e.recordKey(id), values)
		}
		pipe.ZAdd(ctx, e.idsKey(), redis.Z{
			Score:  float64(e.now().UnixNano()),
			Member: string(id),
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

func (e *redisEndpoint) Update(ctx context.Context, req *core.UpdateRequest) error {
	_, err := e.redis.ZScore(ctx, e.idsKey(), string(req.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %q", core.ErrRecordNotFound, req.ID)
	}
	if err != nil {
		return err
	}

	b, err := json.Marshal(req.FieldData)
	if err != nil {
		return err
	}

	return e.redis.HSet(ctx, e.recordKey(req.ID), req.FieldName, string(b)).Err()
}

func (e *redisEndpoint) Close() {
	e.redis.Close()
}
