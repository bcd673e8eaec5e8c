package scout

import (
	"context"
	"net/url"

	"pkt.systems/scout/api"
)

// Catalog queries and manipulates the cluster-wide registry of nodes and
// services. Registrations made here bypass the local agent's
// anti-entropy, so prefer Agent.Service.Register for services the agent
// should own.
type Catalog struct {
	endpoint
}

// Register writes a node, and optionally a service and check, directly
// into the catalog.
func (c *Catalog) Register(ctx context.Context, reg api.CatalogRegistration) (bool, error) {
	if err := reg.Validate(); err != nil {
		return false, err
	}
	return c.putOK(ctx, []string{"register"}, nil, reg)
}

// Deregister removes a node, service or check from the catalog.
func (c *Catalog) Deregister(ctx context.Context, dereg api.CatalogDeregistration) (bool, error) {
	if err := dereg.Validate(); err != nil {
		return false, err
	}
	return c.putOK(ctx, []string{"deregister"}, nil, dereg)
}

// Datacenters returns the datacenters known to the server, sorted by
// estimated round-trip time.
func (c *Catalog) Datacenters(ctx context.Context) ([]string, error) {
	result, err := c.getList(ctx, []string{"datacenters"}, nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(result))
	for _, entry := range result {
		if name, ok := entry.(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Node returns the services registered on one node.
func (c *Catalog) Node(ctx context.Context, node string) (map[string]any, error) {
	result, err := c.get(ctx, []string{"node", node}, nil, false)
	if err != nil {
		return nil, err
	}
	return asObject(result), nil
}

// Nodes returns every node in the catalog.
func (c *Catalog) Nodes(ctx context.Context) ([]any, error) {
	return c.getList(ctx, []string{"nodes"}, nil)
}

// Service returns the nodes providing a service, optionally narrowed to
// one tag.
func (c *Catalog) Service(ctx context.Context, serviceID, tag string) ([]any, error) {
	query := url.Values{}
	if tag != "" {
		query.Set("tag", tag)
	}
	return c.getList(ctx, []string{"service", serviceID}, query)
}

// Services returns the services in the catalog mapped to their tags.
func (c *Catalog) Services(ctx context.Context) (map[string]any, error) {
	result, err := c.get(ctx, []string{"services"}, nil, false)
	if err != nil {
		return nil, err
	}
	return asObject(result), nil
}
