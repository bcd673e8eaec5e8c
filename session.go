package scout

import (
	"context"
	"fmt"

	"pkt.systems/scout/api"
)

// Session manages sessions, the grouping construct behind locks and
// ephemeral keys.
type Session struct {
	endpoint
}

// Create registers a new session and returns its ID.
func (s *Session) Create(ctx context.Context, opts api.SessionOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	result, err := s.putBody(ctx, []string{"create"}, nil, opts)
	if err != nil {
		return "", err
	}
	obj := asObject(result)
	id, _ := obj["ID"].(string)
	if id == "" {
		return "", fmt.Errorf("scout: session create returned no id")
	}
	s.logger.Debug("client.session.created", "session", id)
	return id, nil
}

// Destroy removes a session, releasing or deleting any locks it holds
// according to its behavior.
func (s *Session) Destroy(ctx context.Context, sessionID string) (bool, error) {
	return s.putOK(ctx, []string{"destroy", sessionID}, nil, nil)
}

// Info returns the session record, or nil when the session does not
// exist.
func (s *Session) Info(ctx context.Context, sessionID string) (map[string]any, error) {
	result, err := s.get(ctx, []string{"info", sessionID}, nil, false)
	if err != nil {
		return nil, err
	}
	return asObject(result), nil
}

// List returns every active session in the datacenter.
func (s *Session) List(ctx context.Context) ([]any, error) {
	return s.getList(ctx, []string{"list"}, nil)
}

// Node returns the active sessions owned by a node.
func (s *Session) Node(ctx context.Context, node string) ([]any, error) {
	return s.getList(ctx, []string{"node", node}, nil)
}

// Renew resets the TTL clock on a session and returns the refreshed
// record. A session that already expired yields nil rather than an
// error.
func (s *Session) Renew(ctx context.Context, sessionID string) (map[string]any, error) {
	resp, err := s.transport.Put(ctx, s.buildURI([]string{"renew", sessionID}, nil), nil)
	if err != nil {
		return nil, err
	}
	result, err := resp.Demarshal(false)
	if err != nil {
		return nil, err
	}
	return asObject(result), nil
}
