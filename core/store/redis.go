package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix  = "wabot:user:"
	salesKeyPrefix = "wabot:sales:"
	invKeyPrefix   = "wabot:inv:"
	sendersKey     = "wabot:senders"
	salesTotalKey  = "wabot:sales_total"
)

type redisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore wraps a connected Redis client as a Store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client, now: time.Now}
}

func (r *redisStore) GetOrCreateUser(ctx context.Context, sender string) (User, bool, error) {
	key := userKeyPrefix + sender
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return User{}, false, fmt.Errorf("load user: %w", err)
	}
	if len(fields) > 0 {
		u, err := userFromHash(sender, fields)
		if err != nil {
			return User{}, false, err
		}
		return u, false, nil
	}

	created := r.now().UTC()
	u := User{Sender: sender, Stage: StageNew, CreatedAt: created}
	if err := r.client.HSet(ctx, key,
		"business_name", "",
		"stage", string(StageNew),
		"created_at", created.Format(time.RFC3339Nano),
	).Err(); err != nil {
		return User{}, false, fmt.Errorf("create user: %w", err)
	}
	if err := r.client.SAdd(ctx, sendersKey, sender).Err(); err != nil {
		return User{}, false, fmt.Errorf("register sender: %w", err)
	}
	return u, true, nil
}

func userFromHash(sender string, fields map[string]string) (User, error) {
	u := User{
		Sender:       sender,
		BusinessName: fields["business_name"],
		Stage:        Stage(fields["stage"]),
	}
	if raw := fields["created_at"]; raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return User{}, fmt.Errorf("parse created_at: %w", err)
		}
		u.CreatedAt = ts
	}
	if u.Stage == "" {
		u.Stage = StageNew
	}
	return u, nil
}

func (r *redisStore) SetStage(ctx context.Context, sender string, st Stage) error {
	if err := r.client.HSet(ctx, userKeyPrefix+sender, "stage", string(st)).Err(); err != nil {
		return fmt.Errorf("set stage: %w", err)
	}
	return nil
}

func (r *redisStore) SetBusinessName(ctx context.Context, sender, name string) error {
	if err := r.client.HSet(ctx, userKeyPrefix+sender,
		"business_name", name,
		"stage", string(StageActive),
	).Err(); err != nil {
		return fmt.Errorf("set business name: %w", err)
	}
	return nil
}

func (r *redisStore) AppendSale(ctx context.Context, sender string, sale SaleRecord) (int, error) {
	payload, err := json.Marshal(sale)
	if err != nil {
		return 0, fmt.Errorf("marshal sale: %w", err)
	}
	count, err := r.client.RPush(ctx, salesKeyPrefix+sender, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("append sale: %w", err)
	}
	if err := r.client.Incr(ctx, salesTotalKey).Err(); err != nil {
		return 0, fmt.Errorf("bump sales total: %w", err)
	}
	return int(count), nil
}

func (r *redisStore) SalesSince(ctx context.Context, sender string, since time.Time) ([]SaleRecord, error) {
	raw, err := r.client.LRange(ctx, salesKeyPrefix+sender, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	var out []SaleRecord
	for _, item := range raw {
		var sale SaleRecord
		if err := json.Unmarshal([]byte(item), &sale); err != nil {
			return nil, fmt.Errorf("unmarshal sale: %w", err)
		}
		if !sale.RecordedAt.Before(since) {
			out = append(out, sale)
		}
	}
	return out, nil
}

func (r *redisStore) AddStock(ctx context.Context, sender, product string, qty int) (int, error) {
	stock, err := r.client.HIncrBy(ctx, invKeyPrefix+sender, product, int64(qty)).Result()
	if err != nil {
		return 0, fmt.Errorf("add stock: %w", err)
	}
	return int(stock), nil
}

func (r *redisStore) Inventory(ctx context.Context, sender string) (map[string]int, error) {
	fields, err := r.client.HGetAll(ctx, invKeyPrefix+sender).Result()
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	out := make(map[string]int, len(fields))
	for product, raw := range fields {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse stock for %s: %w", product, err)
		}
		out[product] = stock
	}
	return out, nil
}

func (r *redisStore) Stats(ctx context.Context) (Stats, error) {
	users, err := r.client.SCard(ctx, sendersKey).Result()
	if err != nil {
		return Stats{}, fmt.Errorf("count senders: %w", err)
	}
	total, err := r.client.Get(ctx, salesTotalKey).Int()
	if err != nil && err != redis.Nil {
		return Stats{}, fmt.Errorf("read sales total: %w", err)
	}
	return Stats{Users: int(users), TotalSales: total}, nil
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
