package scout

import (
	"context"
	"net/url"

	"pkt.systems/scout/api"
)

// Event fires and lists custom user events.
type Event struct {
	endpoint
}

// Fire broadcasts a named event, optionally carrying a payload and
// narrowed by the node, service and tag filters in opts. It returns the
// event ID assigned by the server.
func (e *Event) Fire(ctx context.Context, name string, payload any, opts api.EventOptions) (string, error) {
	query := url.Values{}
	if opts.NodeFilter != "" {
		query.Set("node", opts.NodeFilter)
	}
	if opts.ServiceFilter != "" {
		query.Set("service", opts.ServiceFilter)
	}
	if opts.TagFilter != "" {
		query.Set("tag", opts.TagFilter)
	}
	result, err := e.putBody(ctx, []string{"fire", name}, query, payload)
	if err != nil {
		return "", err
	}
	obj := asObject(result)
	id, _ := obj["ID"].(string)
	return id, nil
}

// List returns recently fired events, optionally filtered by name.
func (e *Event) List(ctx context.Context, name string) ([]any, error) {
	query := url.Values{}
	if name != "" {
		query.Set("name", name)
	}
	return e.getList(ctx, []string{"list"}, query)
}
