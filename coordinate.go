package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"pkt.systems/scout/api"
)

// Coordinate reads network tomography coordinates and estimates
// round-trip times between nodes.
type Coordinate struct {
	endpoint
}

// Datacenters returns the WAN coordinates of the server nodes, grouped by
// datacenter.
func (c *Coordinate) Datacenters(ctx context.Context) ([]any, error) {
	return c.getList(ctx, []string{"datacenters"}, nil)
}

// Nodes returns the LAN coordinates of every node in the datacenter.
func (c *Coordinate) Nodes(ctx context.Context) ([]api.CoordinateEntry, error) {
	return c.entries(ctx, []string{"nodes"})
}

// Node returns the LAN coordinate of one node, or nil when the node is
// unknown.
func (c *Coordinate) Node(ctx context.Context, node string) (*api.CoordinateEntry, error) {
	entries, err := c.entries(ctx, []string{"node", node})
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

func (c *Coordinate) entries(ctx context.Context, parts []string) ([]api.CoordinateEntry, error) {
	resp, err := c.transport.Get(ctx, c.buildURI(parts, nil))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if _, err := resp.OK(true); err != nil {
		return nil, err
	}
	var entries []api.CoordinateEntry
	if err := json.Unmarshal(resp.Body, &entries); err != nil {
		return nil, fmt.Errorf("scout: decode coordinates: %w", err)
	}
	return entries, nil
}

// RTT estimates the round-trip time in milliseconds between two
// coordinates: the euclidean distance between the coordinate vectors plus
// both heights, with the sum of both adjustments applied only when the
// adjusted value stays positive.
func RTT(src, dst api.Coordinate) (float64, error) {
	if len(src.Vec) != len(dst.Vec) {
		return 0, fmt.Errorf("scout: coordinate dimensions differ (%d != %d)", len(src.Vec), len(dst.Vec))
	}
	sumsq := 0.0
	for i := range src.Vec {
		diff := src.Vec[i] - dst.Vec[i]
		sumsq += diff * diff
	}
	rtt := math.Sqrt(sumsq) + src.Height + dst.Height
	if adjusted := rtt + src.Adjustment + dst.Adjustment; adjusted > 0 {
		rtt = adjusted
	}
	return rtt * 1000.0, nil
}

// NodeRTT estimates the round-trip time in milliseconds between two nodes
// by name, fetching their current coordinates.
func (c *Coordinate) NodeRTT(ctx context.Context, srcNode, dstNode string) (float64, error) {
	src, err := c.Node(ctx, srcNode)
	if err != nil {
		return 0, err
	}
	if src == nil {
		return 0, fmt.Errorf("scout: node %q has no coordinate", srcNode)
	}
	dst, err := c.Node(ctx, dstNode)
	if err != nil {
		return 0, err
	}
	if dst == nil {
		return 0, fmt.Errorf("scout: node %q has no coordinate", dstNode)
	}
	return RTT(src.Coord, dst.Coord)
}
