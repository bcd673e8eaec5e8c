package scout

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigBase(t *testing.T) {
	base, err := DefaultConfig().baseAddress()
	if err != nil {
		t.Fatalf("baseAddress: %v", err)
	}
	if base != "http://localhost:8500" {
		t.Fatalf("base = %q", base)
	}
}

func TestBaseAddressFallbacks(t *testing.T) {
	base, err := Config{Host: "discovery.internal"}.baseAddress()
	if err != nil {
		t.Fatalf("baseAddress: %v", err)
	}
	if base != "http://discovery.internal:8500" {
		t.Fatalf("base = %q", base)
	}
}

func TestNormalizeAddress(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"http://host:9000", "http://host:9000"},
		{"https://host:9000/", "https://host:9000"},
		{"host.example.com", "http://host.example.com:8500"},
		{"http://host", "http://host:8500"},
		{"unix:///var/run/agent.sock", "unix:///var/run/agent.sock"},
	}
	for _, tc := range cases {
		got, err := normalizeAddress(tc.in)
		if err != nil {
			t.Fatalf("normalizeAddress(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("normalizeAddress(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if _, err := normalizeAddress("ftp://host"); err == nil {
		t.Fatal("expected scheme error")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvHost, "env-host")
	t.Setenv(EnvPort, "7500")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvDatacenter, "env-dc")
	cfg := ConfigFromEnv()
	if cfg.Host != "env-host" || cfg.Port != 7500 {
		t.Fatalf("host = %q, port = %d", cfg.Host, cfg.Port)
	}
	if cfg.Token != "env-token" || cfg.Datacenter != "env-dc" {
		t.Fatalf("token = %q, dc = %q", cfg.Token, cfg.Datacenter)
	}
}

func TestConfigFromEnvAddrWins(t *testing.T) {
	t.Setenv(EnvHTTPAddr, "https://secure.example.com:8501")
	cfg := ConfigFromEnv()
	base, err := cfg.baseAddress()
	if err != nil {
		t.Fatalf("baseAddress: %v", err)
	}
	if base != "https://secure.example.com:8501" {
		t.Fatalf("base = %q", base)
	}
}

func TestRequestTimeoutMapping(t *testing.T) {
	if d := (Config{}).requestTimeout(); d != DefaultTimeout {
		t.Fatalf("zero timeout = %v", d)
	}
	if d := (Config{Timeout: -1}).requestTimeout(); d != 0 {
		t.Fatalf("negative timeout = %v", d)
	}
	if d := (Config{Timeout: 5 * time.Second}).requestTimeout(); d != 5*time.Second {
		t.Fatalf("explicit timeout = %v", d)
	}
}

func TestBuildURIInjectsDCAndToken(t *testing.T) {
	e := endpoint{baseURI: "http://localhost:8500/v1/kv", dc: "d1", token: "t1"}
	uri := e.buildURI([]string{"foo/bar"}, url.Values{"baz": {"qux"}})
	parsed, err := url.Parse(uri)
	if err != nil {
		t.Fatalf("parse %q: %v", uri, err)
	}
	if parsed.Path != "/v1/kv/foo/bar" {
		t.Fatalf("path = %q", parsed.Path)
	}
	q := parsed.Query()
	if q.Get("dc") != "d1" || q.Get("token") != "t1" || q.Get("baz") != "qux" {
		t.Fatalf("query = %v", q)
	}
}

func TestBuildURIWithoutOptionalParams(t *testing.T) {
	e := endpoint{baseURI: "http://localhost:8500/v1/status"}
	uri := e.buildURI([]string{"leader"}, nil)
	if uri != "http://localhost:8500/v1/status/leader" {
		t.Fatalf("uri = %q", uri)
	}
}

func TestUnixHTTPClientBase(t *testing.T) {
	client, base, err := buildHTTPClient("unix:///tmp/agent.sock", Config{})
	if err != nil {
		t.Fatalf("buildHTTPClient: %v", err)
	}
	if client == nil {
		t.Fatal("nil http client")
	}
	if base != "http://unix" {
		t.Fatalf("base = %q", base)
	}
}

func TestPrepareValueEncoding(t *testing.T) {
	data, err := prepareValue("plain")
	if err != nil || string(data) != "plain" {
		t.Fatalf("string: %q %v", data, err)
	}
	data, err = prepareValue([]byte{0x1, 0x2})
	if err != nil || len(data) != 2 {
		t.Fatalf("bytes: %q %v", data, err)
	}
	data, err = prepareValue(map[string]int{"n": 1})
	if err != nil || !strings.Contains(string(data), `"n":1`) {
		t.Fatalf("object: %q %v", data, err)
	}
	data, err = prepareValue(nil)
	if err != nil || data != nil {
		t.Fatalf("nil: %q %v", data, err)
	}
}
