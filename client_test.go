package scout_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pkt.systems/scout"
	"pkt.systems/scout/api"
)

// newTestClient points a client at an httptest server.
func newTestClient(t *testing.T, handler http.Handler, cfg scout.Config) (*scout.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.Address = srv.URL
	cli, err := scout.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { cli.Close() })
	return cli, srv
}

func TestRequestsCarryDatacenterAndToken(t *testing.T) {
	var gotPath, gotDC, gotToken string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDC = r.URL.Query().Get("dc")
		gotToken = r.URL.Query().Get("token")
		fmt.Fprint(w, `"1.2.3.4:8300"`)
	})
	cli, _ := newTestClient(t, handler, scout.Config{Datacenter: "d1", Token: "t1"})
	leader, err := cli.Status.Leader(context.Background())
	if err != nil {
		t.Fatalf("Leader: %v", err)
	}
	if leader != "1.2.3.4:8300" {
		t.Fatalf("leader = %q", leader)
	}
	if gotPath != "/v1/status/leader" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotDC != "d1" || gotToken != "t1" {
		t.Fatalf("dc = %q, token = %q", gotDC, gotToken)
	}
}

func TestPutContentTypes(t *testing.T) {
	var contentTypes []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			contentTypes = append(contentTypes, r.Header.Get("Content-Type"))
		}
		fmt.Fprint(w, "true")
	})
	cli, _ := newTestClient(t, handler, scout.Config{})
	ctx := context.Background()
	if err := cli.KV.SetBlind(ctx, "str", "raw string"); err != nil {
		t.Fatalf("SetBlind string: %v", err)
	}
	if err := cli.KV.SetBlind(ctx, "obj", map[string]int{"n": 1}); err != nil {
		t.Fatalf("SetBlind object: %v", err)
	}
	if len(contentTypes) != 2 {
		t.Fatalf("expected 2 PUTs, got %d", len(contentTypes))
	}
	if contentTypes[0] != "application/x-www-form-urlencoded" {
		t.Fatalf("string content type = %q", contentTypes[0])
	}
	if contentTypes[1] != "application/json" {
		t.Fatalf("object content type = %q", contentTypes[1])
	}
}

func TestConnectionFailureIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()
	cli, err := scout.New(scout.Config{Address: addr, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = cli.Status.Leader(context.Background())
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !scout.IsRequestError(err) {
		t.Fatalf("expected RequestError, got %T: %v", err, err)
	}
}

func TestContextDeadlineStopsRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	cli, _ := newTestClient(t, handler, scout.Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := cli.Status.Leader(ctx); err == nil {
		t.Fatal("expected deadline error")
	}
}

func TestAgentMonitorStreamsLines(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/agent/monitor" {
			http.NotFound(w, r)
			return
		}
		flusher := w.(http.Flusher)
		fmt.Fprintln(w, "first line")
		flusher.Flush()
		fmt.Fprintln(w, "second line")
	})
	cli, _ := newTestClient(t, handler, scout.Config{})
	stream, err := cli.Agent.Monitor(context.Background())
	if err != nil {
		t.Fatalf("Monitor: %v", err)
	}
	defer stream.Close()
	first, err := stream.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first != "first line" {
		t.Fatalf("first = %q", first)
	}
	second, err := stream.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if second != "second line" {
		t.Fatalf("second = %q", second)
	}
	if _, err := stream.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestACLStatusMapping(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/acl/list":
			http.Error(w, "ACL support disabled", http.StatusUnauthorized)
		case "/v1/acl/info/denied":
			http.Error(w, "Permission denied", http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	})
	cli, _ := newTestClient(t, handler, scout.Config{})
	ctx := context.Background()
	if _, err := cli.ACL.List(ctx); !errors.Is(err, scout.ErrACLDisabled) {
		t.Fatalf("list: got %v, want ErrACLDisabled", err)
	}
	if _, err := cli.ACL.Info(ctx, "denied"); !errors.Is(err, scout.ErrForbidden) {
		t.Fatalf("info: got %v, want ErrForbidden", err)
	}
}

func TestStatusPeers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `["10.0.0.1:8300","10.0.0.2:8300"]`)
	})
	cli, _ := newTestClient(t, handler, scout.Config{})
	peers, err := cli.Status.Peers(context.Background())
	if err != nil {
		t.Fatalf("Peers: %v", err)
	}
	if len(peers) != 2 || peers[0] != "10.0.0.1:8300" {
		t.Fatalf("peers = %v", peers)
	}
}

func TestSessionCreateRenewDestroy(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/session/create":
			fmt.Fprint(w, `{"ID":"session-1"}`)
		case "/v1/session/renew/session-1":
			fmt.Fprint(w, `[{"ID":"session-1","TTL":"15s"}]`)
		case "/v1/session/destroy/session-1":
			fmt.Fprint(w, "true")
		default:
			http.NotFound(w, r)
		}
	})
	cli, _ := newTestClient(t, handler, scout.Config{})
	ctx := context.Background()
	id, err := cli.Session.Create(ctx, api.SessionOptions{Behavior: api.SessionBehaviorRelease})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "session-1" {
		t.Fatalf("id = %q", id)
	}
	renewed, err := cli.Session.Renew(ctx, id)
	if err != nil {
		t.Fatalf("Renew: %v", err)
	}
	if renewed["TTL"] != "15s" {
		t.Fatalf("renewed = %v", renewed)
	}
	ok, err := cli.Session.Destroy(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Destroy: ok=%v err=%v", ok, err)
	}
}

func TestSessionRenewExpired(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusNotFound)
	})
	cli, _ := newTestClient(t, handler, scout.Config{})
	renewed, err := cli.Session.Renew(context.Background(), "session-gone")
	if err != nil {
		t.Fatalf("Renew: %v", err)
	}
	if renewed != nil {
		t.Fatalf("renewed = %v, want nil", renewed)
	}
}
