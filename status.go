package scout

import (
	"context"
	"fmt"
)

// Status reports raft status for the cluster.
type Status struct {
	endpoint
}

// Leader returns the address of the current raft leader, or an empty
// string during an election.
func (s *Status) Leader(ctx context.Context) (string, error) {
	result, err := s.get(ctx, []string{"leader"}, nil, true)
	if err != nil {
		return "", err
	}
	leader, ok := result.(string)
	if !ok && result != nil {
		return "", fmt.Errorf("scout: unexpected leader response %T", result)
	}
	return leader, nil
}

// Peers returns the addresses of the raft peers.
func (s *Status) Peers(ctx context.Context) ([]string, error) {
	result, err := s.getList(ctx, []string{"peers"}, nil)
	if err != nil {
		return nil, err
	}
	peers := make([]string, 0, len(result))
	for _, entry := range result {
		if peer, ok := entry.(string); ok {
			peers = append(peers, peer)
		}
	}
	return peers, nil
}
