// Package stream implements the pipeline's message substrate on Redis
// Streams: Publish, Consume, Ack, Claim and a separate fingerprint Dedup
// set. Grounded on the retrieved dpsync service's own go-redis/v9 client
// wiring (pkg/infra/redis/pubsub.go) and on the XADD/XREADGROUP/XACK/XCLAIM
// operation shapes used by Redis-Streams-backed pipelines.
package stream

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one delivered stream message: its Redis-assigned ID and the
// raw field values Redis returned. The payload stays JSON-encoded in the
// "data" field until Decode unmarshals it.
type Entry struct {
	ID     string
	Fields map[string]string
}

// Substrate wraps a go-redis client with the five operations the pipeline
// stages depend on: Publish, Consume, Ack, Claim, Dedup.
type Substrate struct {
	client *redis.Client
}

// New connects to addr and verifies the connection with a PING, the same
// handshake the dpsync redis package performs.
func New(ctx context.Context, addr, password string, db int) (*Substrate, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("stream: connect to redis: %w", err)
	}
	return &Substrate{client: client}, nil
}

// Close releases the underlying connection pool.
func (s *Substrate) Close() error {
	return s.client.Close()
}

// Publish serializes payload to a single "data" field and XADDs it to
// stream, returning the assigned entry ID.
func (s *Substrate) Publish(ctx context.Context, streamName string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("stream: marshal payload: %w", err)
	}

	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]any{"data": body},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("stream: xadd %s: %w", streamName, err)
	}
	return id, nil
}

// EnsureGroup creates the consumer group at the tail of the stream,
// creating the stream itself if absent, and tolerates the group already
// existing (BUSYGROUP), mirroring create_consumer_group's behavior.
func (s *Substrate) EnsureGroup(ctx context.Context, streamName, group string) error {
	err := s.client.XGroupCreateMkStream(ctx, streamName, group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("stream: create group %s/%s: %w", streamName, group, err)
	}
	return nil
}

// Consume reads up to count new entries from streamName on behalf of
// consumer within group, blocking up to block for at least one. It
// ensures the consumer group exists first. An empty, nil-error result
// means the block timed out with nothing delivered.
func (s *Substrate) Consume(ctx context.Context, streamName, group, consumer string, block time.Duration, count int64) ([]Entry, error) {
	if err := s.EnsureGroup(ctx, streamName, group); err != nil {
		return nil, err
	}

	res, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{streamName, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stream: xreadgroup %s/%s: %w", streamName, group, err)
	}

	var entries []Entry
	for _, st := range res {
		for _, msg := range st.Messages {
			entries = append(entries, toEntry(msg))
		}
	}
	return entries, nil
}

// Ack removes pending ownership of ids in group on streamName.
func (s *Substrate) Ack(ctx context.Context, streamName, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.client.XAck(ctx, streamName, group, ids...).Err(); err != nil {
		return fmt.Errorf("stream: xack %s/%s: %w", streamName, group, err)
	}
	return nil
}

// Claim takes over entries idle for at least minIdle in group on
// streamName, reassigning them to consumer, and returns them as if newly
// delivered. It lets a live worker finish work abandoned by a dead peer.
func (s *Substrate) Claim(ctx context.Context, streamName, group, consumer string, minIdle time.Duration, count int64) ([]Entry, error) {
	pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: streamName,
		Group:  group,
		Start:  "-",
		End:    "+",
		Count:  count,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("stream: xpending %s/%s: %w", streamName, group, err)
	}

	var ids []string
	for _, p := range pending {
		if p.Idle >= minIdle {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	claimed, err := s.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   streamName,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("stream: xclaim %s/%s: %w", streamName, group, err)
	}

	entries := make([]Entry, 0, len(claimed))
	for _, msg := range claimed {
		entries = append(entries, toEntry(msg))
	}
	return entries, nil
}

// Dedup atomically reserves fingerprint for ttl via SET NX EX, per the
// original deduplicator's is_duplicate check. It returns true the first
// time a given fingerprint is seen within ttl, false on every repeat.
func (s *Substrate) Dedup(ctx context.Context, fingerprint string, ttl time.Duration) (firstSeen bool, err error) {
	key := "dedup:" + fingerprint
	ok, err := s.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("stream: dedup setnx: %w", err)
	}
	return ok, nil
}

// Fingerprint computes the dedup key: the MD5 of the lowercased, trimmed
// headline. The second argument (the body) does not affect the result, so
// articles sharing a headline share a fingerprint.
func Fingerprint(headline, _ string) string {
	content := strings.TrimSpace(strings.ToLower(headline))
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

func toEntry(msg redis.XMessage) Entry {
	fields := make(map[string]string, len(msg.Values))
	for k, v := range msg.Values {
		if s, ok := v.(string); ok {
			fields[k] = s
		} else {
			fields[k] = fmt.Sprintf("%v", v)
		}
	}
	return Entry{ID: msg.ID, Fields: fields}
}
