package scout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pkt.systems/scout/api"
)

// ErrWriteRejected is returned when a conditional write loses the
// check-and-set race or the server refuses it.
var ErrWriteRejected = errors.New("scout: conditional write rejected")

// KV exposes the key/value store. Plain writes go through a check-and-set
// protocol: the current value is read first, an identical write is
// skipped, and the update carries the observed modify index so concurrent
// writers cannot silently clobber each other. SetBlind opts out of that
// protection for callers that want last-write-wins.
type KV struct {
	endpoint
}

// Get returns the decoded value stored under key, or nil when the key
// does not exist. JSON payloads decode to their native Go value; anything
// else comes back as a string.
func (k *KV) Get(ctx context.Context, key string) (any, error) {
	record, err := k.GetRecord(ctx, key)
	if err != nil || record == nil {
		return nil, err
	}
	return record.Decoded(), nil
}

// Fetch behaves like Get but fails with ErrKeyNotFound when the key does
// not exist.
func (k *KV) Fetch(ctx context.Context, key string) (any, error) {
	record, err := k.GetRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("scout: key %q: %w", key, ErrKeyNotFound)
	}
	return record.Decoded(), nil
}

// GetRecord returns the full row for key including its indexes, or nil
// when the key does not exist.
func (k *KV) GetRecord(ctx context.Context, key string) (*api.KVPair, error) {
	rows, err := k.rows(ctx, key, nil)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// GetRaw returns the stored value verbatim using the raw query mode,
// bypassing both the row envelope and value decoding.
func (k *KV) GetRaw(ctx context.Context, key string) ([]byte, error) {
	uri := k.buildURI([]string{cleanKey(key)}, url.Values{"raw": {"true"}})
	resp, err := k.transport.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("scout: key %q: %w", key, ErrKeyNotFound)
	}
	if _, err := resp.OK(true); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Set stores value under key, replacing any existing value. Values that
// are not strings or byte slices are JSON-encoded before storage.
func (k *KV) Set(ctx context.Context, key string, value any) error {
	return k.setItem(ctx, key, value, nil, true)
}

// SetDefault stores value under key only when the key does not already
// exist.
func (k *KV) SetDefault(ctx context.Context, key string, value any) error {
	return k.setItem(ctx, key, value, nil, false)
}

// SetRecord stores value under key with the given flags.
func (k *KV) SetRecord(ctx context.Context, key string, flags uint64, value any, replace bool) error {
	return k.setItem(ctx, key, value, &flags, replace)
}

// SetBlind stores value under key without the check-and-set pre-read.
// The write is unconditional: concurrent writers race and the last one
// wins.
func (k *KV) SetBlind(ctx context.Context, key string, value any) error {
	data, err := prepareValue(value)
	if err != nil {
		return err
	}
	resp, err := k.transport.Put(ctx, k.buildURI([]string{cleanKey(key)}, nil), data)
	if err != nil {
		return err
	}
	return checkWriteResponse(resp, key)
}

// Delete removes key. With recurse set, key is treated as a prefix and
// everything under it is removed.
func (k *KV) Delete(ctx context.Context, key string, recurse bool) error {
	query := url.Values{}
	if recurse {
		query.Set("recurse", "true")
	}
	resp, err := k.transport.Delete(ctx, k.buildURI([]string{cleanKey(key)}, query))
	if err != nil {
		return err
	}
	if _, err := resp.OK(false); err != nil {
		return err
	}
	return nil
}

// Contains reports whether key exists.
func (k *KV) Contains(ctx context.Context, key string) (bool, error) {
	return k.getOK(ctx, []string{cleanKey(key)}, nil)
}

// Len returns the number of keys in the store.
func (k *KV) Len(ctx context.Context) (int, error) {
	rows, err := k.rows(ctx, "", url.Values{"recurse": {"true"}})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Find returns every key under prefix mapped to its decoded value.
func (k *KV) Find(ctx context.Context, prefix string) (map[string]any, error) {
	rows, err := k.rows(ctx, prefix, url.Values{"recurse": {"true"}})
	if err != nil {
		return nil, err
	}
	found := make(map[string]any, len(rows))
	for i := range rows {
		found[rows[i].Key] = rows[i].Decoded()
	}
	return found, nil
}

// FindKeys returns the keys under prefix, optionally collapsed at the
// given separator the way a filesystem listing collapses directories.
func (k *KV) FindKeys(ctx context.Context, prefix, separator string) ([]string, error) {
	query := url.Values{"keys": {"true"}}
	if separator != "" {
		query.Set("separator", separator)
	}
	uri := k.buildURI([]string{cleanKey(prefix)}, query)
	resp, err := k.transport.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if _, err := resp.OK(true); err != nil {
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal(resp.Body, &keys); err != nil {
		return nil, fmt.Errorf("scout: decode key listing: %w", err)
	}
	return keys, nil
}

// Keys returns every key in the store, sorted by the server.
func (k *KV) Keys(ctx context.Context) ([]string, error) {
	return k.FindKeys(ctx, "", "")
}

// Values returns the decoded value of every key in the store.
func (k *KV) Values(ctx context.Context) ([]any, error) {
	rows, err := k.rows(ctx, "", url.Values{"recurse": {"true"}})
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(rows))
	for i := range rows {
		values = append(values, rows[i].Decoded())
	}
	return values, nil
}

// Items returns every key in the store mapped to its decoded value.
func (k *KV) Items(ctx context.Context) (map[string]any, error) {
	return k.Find(ctx, "")
}

// Records returns the full row for every key under prefix. An empty
// prefix covers the whole store.
func (k *KV) Records(ctx context.Context, prefix string) ([]api.KVPair, error) {
	return k.rows(ctx, prefix, url.Values{"recurse": {"true"}})
}

// AcquireLock attempts to take the lock on key for the given session,
// optionally storing value in the same write. The result reports whether
// the lock was granted.
func (k *KV) AcquireLock(ctx context.Context, key, sessionID string, value any) (bool, error) {
	return k.sessionFlag(ctx, key, "acquire", sessionID, value)
}

// ReleaseLock releases the lock held on key by the given session. The
// key and its value remain in the store.
func (k *KV) ReleaseLock(ctx context.Context, key, sessionID string) (bool, error) {
	return k.sessionFlag(ctx, key, "release", sessionID, nil)
}

func (k *KV) sessionFlag(ctx context.Context, key, flag, sessionID string, value any) (bool, error) {
	data, err := prepareValue(value)
	if err != nil {
		return false, err
	}
	var payload any
	if data != nil {
		payload = data
	}
	query := url.Values{flag: {sessionID}}
	resp, err := k.transport.Put(ctx, k.buildURI([]string{cleanKey(key)}, query), payload)
	if err != nil {
		return false, err
	}
	result, err := resp.Demarshal(true)
	if err != nil {
		return false, err
	}
	granted, _ := result.(bool)
	return granted, nil
}

func (k *KV) rows(ctx context.Context, key string, query url.Values) ([]api.KVPair, error) {
	uri := k.buildURI([]string{cleanKey(key)}, query)
	resp, err := k.transport.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if _, err := resp.OK(true); err != nil {
		return nil, err
	}
	var rows []api.KVPair
	if err := json.Unmarshal(resp.Body, &rows); err != nil {
		return nil, fmt.Errorf("scout: decode kv rows: %w", err)
	}
	return rows, nil
}

func (k *KV) setItem(ctx context.Context, key string, value any, flags *uint64, replace bool) error {
	data, err := prepareValue(value)
	if err != nil {
		return err
	}
	key = cleanKey(key)
	if len(data) > 0 && strings.HasSuffix(key, "/") {
		key = strings.TrimRight(key, "/")
	}
	index, write, err := k.modifyIndex(ctx, key, data, replace)
	if err != nil {
		return err
	}
	if !write {
		k.logger.Trace("client.kv.set.unchanged", "key", key)
		return nil
	}
	query := url.Values{"cas": {strconv.FormatUint(index, 10)}}
	if flags != nil {
		query.Set("flags", strconv.FormatUint(*flags, 10))
	}
	resp, err := k.transport.Put(ctx, k.buildURI([]string{key}, query), data)
	if err != nil {
		return err
	}
	if err := checkWriteResponse(resp, key); err != nil {
		return err
	}
	k.logger.Debug("client.kv.set", "key", key, "cas", index)
	return nil
}

// modifyIndex performs the check-and-set pre-read. It reports the index
// the write must carry and whether a write is needed at all: storing the
// value already present is a no-op, and with replace false an existing
// key is never overwritten.
func (k *KV) modifyIndex(ctx context.Context, key string, value []byte, replace bool) (uint64, bool, error) {
	record, err := k.GetRecord(ctx, key)
	if err != nil {
		return 0, false, err
	}
	if record == nil {
		return 0, true, nil
	}
	if bytes.Equal(record.Value, value) {
		return 0, false, nil
	}
	if !replace {
		return 0, false, nil
	}
	return record.ModifyIndex, true, nil
}

func checkWriteResponse(resp *Response, key string) error {
	if resp.StatusCode != http.StatusOK {
		if _, err := resp.OK(true); err != nil {
			return err
		}
		return fmt.Errorf("scout: set %q: %w", key, ErrWriteRejected)
	}
	if !bytes.Equal(bytes.TrimSpace(resp.Body), []byte("true")) {
		return fmt.Errorf("scout: set %q: %w", key, ErrWriteRejected)
	}
	return nil
}

// prepareValue normalizes a value for storage: strings and byte slices
// pass through untouched, anything else is JSON-encoded.
func prepareValue(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("scout: encode value: %w", err)
		}
		return data, nil
	}
}

func cleanKey(key string) string {
	return strings.TrimLeft(key, "/")
}
