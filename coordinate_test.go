package scout_test

import (
	"fmt"
	"math"
	"net/http"
	"testing"

	"pkt.systems/scout"
	"pkt.systems/scout/api"
)

func TestRTTTriangle(t *testing.T) {
	src := api.Coordinate{Vec: []float64{0, 0}}
	dst := api.Coordinate{Vec: []float64{3, 4}}
	rtt, err := scout.RTT(src, dst)
	if err != nil {
		t.Fatalf("RTT: %v", err)
	}
	if math.Abs(rtt-5000.0) > 1e-9 {
		t.Fatalf("rtt = %v, want 5000.0", rtt)
	}
}

func TestRTTIncludesHeights(t *testing.T) {
	src := api.Coordinate{Vec: []float64{0}, Height: 0.001}
	dst := api.Coordinate{Vec: []float64{0.003}, Height: 0.002}
	rtt, err := scout.RTT(src, dst)
	if err != nil {
		t.Fatalf("RTT: %v", err)
	}
	if math.Abs(rtt-6.0) > 1e-9 {
		t.Fatalf("rtt = %v, want 6.0", rtt)
	}
}

func TestRTTNegativeAdjustmentIgnored(t *testing.T) {
	src := api.Coordinate{Vec: []float64{0}, Adjustment: -10}
	dst := api.Coordinate{Vec: []float64{3}}
	rtt, err := scout.RTT(src, dst)
	if err != nil {
		t.Fatalf("RTT: %v", err)
	}
	// 3 - 10 goes negative, so the unadjusted distance stands.
	if math.Abs(rtt-3000.0) > 1e-9 {
		t.Fatalf("rtt = %v, want 3000.0", rtt)
	}
}

func TestRTTPositiveAdjustmentApplied(t *testing.T) {
	src := api.Coordinate{Vec: []float64{0}, Adjustment: 0.5}
	dst := api.Coordinate{Vec: []float64{3}, Adjustment: 0.5}
	rtt, err := scout.RTT(src, dst)
	if err != nil {
		t.Fatalf("RTT: %v", err)
	}
	if math.Abs(rtt-4000.0) > 1e-9 {
		t.Fatalf("rtt = %v, want 4000.0", rtt)
	}
}

func TestRTTDimensionMismatch(t *testing.T) {
	src := api.Coordinate{Vec: []float64{0, 0}}
	dst := api.Coordinate{Vec: []float64{1}}
	if _, err := scout.RTT(src, dst); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestCoordinateNodes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/coordinate/nodes":
			fmt.Fprint(w, `[{"Node":"n1","Coord":{"Vec":[0.1],"Error":0.5,"Height":0.001}}]`)
		case "/v1/coordinate/node/n1":
			fmt.Fprint(w, `[{"Node":"n1","Coord":{"Vec":[0.1]}}]`)
		default:
			http.NotFound(w, r)
		}
	})
	cli, _ := newTestClient(t, handler, scout.Config{})
	ctx := t.Context()
	nodes, err := cli.Coordinate.Nodes(ctx)
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Node != "n1" || nodes[0].Coord.Vec[0] != 0.1 {
		t.Fatalf("nodes = %+v", nodes)
	}
	entry, err := cli.Coordinate.Node(ctx, "n1")
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if entry == nil || entry.Node != "n1" {
		t.Fatalf("entry = %+v", entry)
	}
	missing, err := cli.Coordinate.Node(ctx, "ghost")
	if err != nil {
		t.Fatalf("missing node: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing = %+v", missing)
	}
}
