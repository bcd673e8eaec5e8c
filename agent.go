package scout

import (
	"context"
	"net/url"

	"pkt.systems/scout/api"
)

// Agent exposes the local agent: its checks, services, cluster membership
// and log stream. Check and service registration live on the nested Check
// and Service endpoints.
type Agent struct {
	endpoint

	// Check manages health checks registered with this agent.
	Check *AgentCheck
	// Service manages services registered with this agent.
	Service *AgentService
}

// Checks returns the checks the agent is managing.
func (a *Agent) Checks(ctx context.Context) ([]any, error) {
	return a.getList(ctx, []string{"checks"}, nil)
}

// Services returns the services the agent is managing.
func (a *Agent) Services(ctx context.Context) ([]any, error) {
	return a.getList(ctx, []string{"services"}, nil)
}

// Members returns the cluster members as seen by this agent's gossip
// layer.
func (a *Agent) Members(ctx context.Context) ([]any, error) {
	return a.getList(ctx, []string{"members"}, nil)
}

// Self returns this agent's own configuration and member information.
func (a *Agent) Self(ctx context.Context) (map[string]any, error) {
	result, err := a.get(ctx, []string{"self"}, nil, true)
	if err != nil {
		return nil, err
	}
	return asObject(result), nil
}

// Join instructs the agent to join the cluster member at address. With
// wan set the join goes over the WAN gossip pool.
func (a *Agent) Join(ctx context.Context, address string, wan bool) (bool, error) {
	query := url.Values{}
	if wan {
		query.Set("wan", "1")
	}
	return a.getOK(ctx, []string{"join", address}, query)
}

// ForceLeave moves the named member to the left state, evicting a node
// that failed without deregistering.
func (a *Agent) ForceLeave(ctx context.Context, node string) (bool, error) {
	return a.getOK(ctx, []string{"force-leave", node}, nil)
}

// Maintenance toggles node maintenance mode, registering or clearing a
// critical check that pulls the node out of service discovery.
func (a *Agent) Maintenance(ctx context.Context, enable bool, reason string) (bool, error) {
	query := url.Values{"enable": {boolString(enable)}}
	if reason != "" {
		query.Set("reason", reason)
	}
	return a.putOK(ctx, []string{"maintenance"}, query, nil)
}

// Monitor streams the agent's log output. The returned stream yields one
// log line per Next call until closed.
func (a *Agent) Monitor(ctx context.Context) (*LineStream, error) {
	return a.getStream(ctx, []string{"monitor"}, nil)
}

// AgentCheck registers, removes and updates health checks on the local
// agent.
type AgentCheck struct {
	endpoint
}

// Register submits a check definition to the agent. The definition is
// validated locally first.
func (c *AgentCheck) Register(ctx context.Context, check api.CheckDefinition) (bool, error) {
	if err := check.Validate(); err != nil {
		return false, err
	}
	return c.putOK(ctx, []string{"register"}, nil, check)
}

// Deregister removes a check from the agent.
func (c *AgentCheck) Deregister(ctx context.Context, checkID string) (bool, error) {
	return c.getOK(ctx, []string{"deregister", checkID}, nil)
}

// TTLPass marks a TTL check as passing.
func (c *AgentCheck) TTLPass(ctx context.Context, checkID, note string) (bool, error) {
	return c.ttlUpdate(ctx, "pass", checkID, note)
}

// TTLWarn marks a TTL check as warning.
func (c *AgentCheck) TTLWarn(ctx context.Context, checkID, note string) (bool, error) {
	return c.ttlUpdate(ctx, "warn", checkID, note)
}

// TTLFail marks a TTL check as critical.
func (c *AgentCheck) TTLFail(ctx context.Context, checkID, note string) (bool, error) {
	return c.ttlUpdate(ctx, "fail", checkID, note)
}

func (c *AgentCheck) ttlUpdate(ctx context.Context, state, checkID, note string) (bool, error) {
	query := url.Values{}
	if note != "" {
		query.Set("note", note)
	}
	return c.getOK(ctx, []string{state, checkID}, query)
}

// AgentService registers and removes services on the local agent.
type AgentService struct {
	endpoint
}

// Register submits a service registration to the agent. The registration
// and any embedded checks are validated locally first.
func (s *AgentService) Register(ctx context.Context, svc api.ServiceRegistration) (bool, error) {
	if err := svc.Validate(); err != nil {
		return false, err
	}
	ok, err := s.putOK(ctx, []string{"register"}, nil, svc)
	if err == nil && ok {
		s.logger.Debug("client.agent.service.registered", "service", svc.Name, "id", svc.ID)
	}
	return ok, err
}

// Deregister removes a service, and the checks attached to it, from the
// agent.
func (s *AgentService) Deregister(ctx context.Context, serviceID string) (bool, error) {
	return s.getOK(ctx, []string{"deregister", serviceID}, nil)
}

// Maintenance toggles maintenance mode for one service.
func (s *AgentService) Maintenance(ctx context.Context, serviceID string, enable bool, reason string) (bool, error) {
	query := url.Values{"enable": {boolString(enable)}}
	if reason != "" {
		query.Set("reason", reason)
	}
	return s.putOK(ctx, []string{"maintenance", serviceID}, query, nil)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
