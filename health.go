package scout

import (
	"context"
	"fmt"
	"net/url"

	"pkt.systems/scout/api"
)

// Health reads cluster-wide health check state.
type Health struct {
	endpoint
}

// Checks returns the checks attached to a service.
func (h *Health) Checks(ctx context.Context, serviceID string) ([]any, error) {
	return h.getList(ctx, []string{"checks", serviceID}, nil)
}

// Node returns the checks registered on a node.
func (h *Health) Node(ctx context.Context, node string) ([]any, error) {
	return h.getList(ctx, []string{"node", node}, nil)
}

// Service returns the nodes providing a service along with their health
// checks. With passing set, only nodes whose checks all pass are
// returned; tag narrows the result to one service tag.
func (h *Health) Service(ctx context.Context, serviceID, tag string, passing bool) ([]any, error) {
	query := url.Values{}
	if tag != "" {
		query.Set("tag", tag)
	}
	if passing {
		query.Set("passing", "true")
	}
	return h.getList(ctx, []string{"service", serviceID}, query)
}

// State returns every check in the given state. The state must be one of
// the states the server tracks, or "any" for all of them.
func (h *Health) State(ctx context.Context, state string) ([]any, error) {
	if state != "any" && !api.ValidCheckState(state) {
		return nil, fmt.Errorf("scout: invalid check state %q", state)
	}
	return h.getList(ctx, []string{"state", state}, nil)
}
