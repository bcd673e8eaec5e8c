package scout

import (
	"net/http"
	"time"

	"pkt.systems/pslog"
)

// Client is the entry point to the HTTP API. Construct one with New and
// reach each resource through its endpoint field. A Client is safe for
// concurrent use; the endpoints share one transport.
type Client struct {
	transport *Transport
	logger    pslog.Base

	// KV is the key/value store.
	KV *KV
	// Agent is the local agent, including check and service registration.
	Agent *Agent
	// Catalog is the cluster-wide node and service registry.
	Catalog *Catalog
	// Health reads cluster-wide check state.
	Health *Health
	// ACL manages access control tokens.
	ACL *ACL
	// Session manages sessions.
	Session *Session
	// Event fires and lists user events.
	Event *Event
	// Status reports raft leadership and peers.
	Status *Status
	// Coordinate reads network coordinates.
	Coordinate *Coordinate
}

// Option customizes a Client beyond what Config carries.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	logger     pslog.Base
	timeout    *time.Duration
}

// WithHTTPClient supplies a pre-built HTTP client, replacing the one the
// configuration would construct. TLS and unix-socket settings in the
// configuration are ignored when this option is used.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

// WithLogger attaches a structured logger. Without it the client is
// silent.
func WithLogger(logger pslog.Base) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHTTPTimeout overrides the per-request timeout from the
// configuration. Zero disables the deadline.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = &d
	}
}

// New builds a Client from cfg. The zero Config connects to
// http://localhost:8500.
func New(cfg Config, opts ...Option) (*Client, error) {
	options := clientOptions{logger: pslog.NoopLogger()}
	for _, opt := range opts {
		opt(&options)
	}

	base, err := cfg.baseAddress()
	if err != nil {
		return nil, err
	}
	httpClient := options.httpClient
	if httpClient == nil {
		built, normalized, err := buildHTTPClient(base, cfg)
		if err != nil {
			return nil, err
		}
		httpClient = built
		base = normalized
	}

	timeout := cfg.requestTimeout()
	if options.timeout != nil {
		timeout = *options.timeout
	}

	logger := options.logger
	transport := newTransport(httpClient, timeout, logger)
	apiBase := base + "/" + APIVersion

	c := &Client{transport: transport, logger: logger}
	resource := func(name string) endpoint {
		return newEndpoint(transport, apiBase, name, cfg.Datacenter, cfg.Token, logger)
	}
	c.KV = &KV{resource("kv")}
	c.Agent = &Agent{
		endpoint: resource("agent"),
		Check:    &AgentCheck{resource("agent/check")},
		Service:  &AgentService{resource("agent/service")},
	}
	c.Catalog = &Catalog{resource("catalog")}
	c.Health = &Health{resource("health")}
	c.ACL = &ACL{resource("acl")}
	c.Session = &Session{resource("session")}
	c.Event = &Event{resource("event")}
	c.Status = &Status{resource("status")}
	c.Coordinate = &Coordinate{resource("coordinate")}

	logger.Trace("client.ready", "base", apiBase, "dc", cfg.Datacenter)
	return c, nil
}

// Lock returns a new Lock helper bound to this client's KV and Session
// endpoints.
func (c *Client) Lock() *Lock {
	return newLock(c.KV, c.Session, c.logger)
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}
