// Package scout is a Go client for a service-discovery and configuration
// platform's HTTP API. It covers the key/value store, agent and catalog
// registration, health checks, sessions, distributed locks, user events,
// ACL tokens, raft status, and network coordinates.
//
// # Quick start
//
// Construct a client from a Config. The zero Config talks to
// http://localhost:8500; ConfigFromEnv picks up the SCOUT_* environment
// variables instead. The address may also name a unix-domain socket as
// unix:///path/to/agent.sock.
//
//	ctx := context.Background()
//	cli, err := scout.New(scout.Config{Host: "discovery.example.com"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cli.Close()
//
//	if err := cli.KV.Set(ctx, "settings/feature", "on"); err != nil {
//	    log.Fatal(err)
//	}
//	value, err := cli.KV.Get(ctx, "settings/feature")
//
// Every resource hangs off the client as an endpoint field: cli.KV,
// cli.Agent, cli.Catalog, cli.Health, cli.ACL, cli.Session, cli.Event,
// cli.Status and cli.Coordinate. All operations take a context.Context
// and respect its deadline in addition to the configured request timeout.
//
// # Key/value semantics
//
// Values that are not strings or byte slices are stored as JSON and
// decode back to their native Go value on read. Plain writes are
// conditional: the client reads the key first, skips the write when the
// stored value is identical, and sends the observed modify index so a
// concurrent writer cannot be silently overwritten. A lost race surfaces
// as ErrWriteRejected. KV.SetBlind skips the pre-read for callers that
// want plain last-write-wins behavior.
//
// # Locks
//
// Client.Lock returns a helper that pairs a session with a KV key to
// provide cluster-wide mutual exclusion:
//
//	lock := cli.Lock()
//	err := lock.Do(ctx, "reindex", nil, func(ctx context.Context) error {
//	    // only one holder runs at a time
//	    return reindex(ctx)
//	})
//	if errors.Is(err, scout.ErrLockHeld) {
//	    // another node got there first
//	}
//
// # Errors
//
// API failures return an *APIError carrying the HTTP status and body;
// match them with errors.Is against ErrClient, ErrACLDisabled,
// ErrForbidden, ErrNotFound and ErrServer. Failures to reach the server
// at all return a *RequestError.
//
// # Logging
//
// Pass scout.WithLogger with any pslog.Base implementation to capture
// structured traces of each request. Without a logger the client is
// silent.
package scout
