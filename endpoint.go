package scout

import (
	"context"
	"net/url"
	"strings"

	"pkt.systems/pslog"
)

// endpoint is the embedded base for every resource endpoint. It carries
// the resource base URI (scheme://host:port/v1/<resource>) and injects the
// configured datacenter and token as the dc and token query parameters on
// every request it builds.
type endpoint struct {
	transport *Transport
	baseURI   string
	dc        string
	token     string
	logger    pslog.Base
}

func newEndpoint(transport *Transport, apiBase, name, dc, token string, logger pslog.Base) endpoint {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return endpoint{
		transport: transport,
		baseURI:   apiBase + "/" + name,
		dc:        dc,
		token:     token,
		logger:    logger,
	}
}

// buildURI joins path parts onto the endpoint base and encodes the query.
// Empty parts are kept so that listing the resource root yields a trailing
// slash, matching the server's routing for prefix queries.
func (e *endpoint) buildURI(parts []string, query url.Values) string {
	merged := url.Values{}
	for key, values := range query {
		merged[key] = values
	}
	if e.dc != "" {
		merged.Set("dc", e.dc)
	}
	if e.token != "" {
		merged.Set("token", e.token)
	}
	uri := e.baseURI + "/" + strings.Join(parts, "/")
	if encoded := merged.Encode(); encoded != "" {
		uri += "?" + encoded
	}
	return uri
}

// get fetches and demarshals a resource. With raiseOn404 false a missing
// resource demarshals to an empty list rather than an error.
func (e *endpoint) get(ctx context.Context, parts []string, query url.Values, raiseOn404 bool) (any, error) {
	resp, err := e.transport.Get(ctx, e.buildURI(parts, query))
	if err != nil {
		return nil, err
	}
	return resp.Demarshal(raiseOn404)
}

// getList fetches a resource and normalizes the result to a slice. A
// single-object result is wrapped; a missing resource yields nil.
func (e *endpoint) getList(ctx context.Context, parts []string, query url.Values) ([]any, error) {
	result, err := e.get(ctx, parts, query, false)
	if err != nil {
		return nil, err
	}
	switch v := result.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	default:
		return []any{v}, nil
	}
}

// getOK fetches a resource and reports only whether the server accepted
// the request.
func (e *endpoint) getOK(ctx context.Context, parts []string, query url.Values) (bool, error) {
	resp, err := e.transport.Get(ctx, e.buildURI(parts, query))
	if err != nil {
		return false, err
	}
	return resp.OK(false)
}

// putOK writes a resource and reports only whether the server accepted
// the request.
func (e *endpoint) putOK(ctx context.Context, parts []string, query url.Values, payload any) (bool, error) {
	resp, err := e.transport.Put(ctx, e.buildURI(parts, query), payload)
	if err != nil {
		return false, err
	}
	return resp.OK(false)
}

// putBody writes a resource and demarshals the response body.
func (e *endpoint) putBody(ctx context.Context, parts []string, query url.Values, payload any) (any, error) {
	resp, err := e.transport.Put(ctx, e.buildURI(parts, query), payload)
	if err != nil {
		return nil, err
	}
	return resp.Demarshal(true)
}

// del deletes a resource and reports whether the server accepted the
// request.
func (e *endpoint) del(ctx context.Context, parts []string, query url.Values) (bool, error) {
	resp, err := e.transport.Delete(ctx, e.buildURI(parts, query))
	if err != nil {
		return false, err
	}
	return resp.OK(false)
}

// getStream opens a streaming GET against the resource.
func (e *endpoint) getStream(ctx context.Context, parts []string, query url.Values) (*LineStream, error) {
	return e.transport.GetStream(ctx, e.buildURI(parts, query))
}

// asObject coerces a demarshaled result into an object, unwrapping a
// single-element list when the server responds with one.
func asObject(result any) map[string]any {
	switch v := result.(type) {
	case map[string]any:
		return v
	case []any:
		if len(v) == 1 {
			if obj, ok := v[0].(map[string]any); ok {
				return obj
			}
		}
	}
	return nil
}
