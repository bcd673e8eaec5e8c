package scout

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultScheme is used when no scheme is configured.
	DefaultScheme = "http"
	// DefaultHost is used when no host is configured.
	DefaultHost = "localhost"
	// DefaultPort is used when no port is configured.
	DefaultPort = 8500
	// APIVersion is the path prefix every request is issued under.
	APIVersion = "v1"
	// DefaultTimeout bounds each request unless overridden.
	DefaultTimeout = 30 * time.Second
)

// Environment variables honored by ConfigFromEnv.
const (
	EnvHTTPAddr   = "SCOUT_HTTP_ADDR"
	EnvHost       = "SCOUT_HOST"
	EnvPort       = "SCOUT_PORT"
	EnvToken      = "SCOUT_HTTP_TOKEN"
	EnvDatacenter = "SCOUT_DATACENTER"
)

// Config carries the connection settings for a Client. The zero value is
// usable; missing fields fall back to the documented defaults. Address
// takes precedence over Scheme, Host and Port when set, and may name a
// unix-domain socket as unix:///path/to/socket.
type Config struct {
	// Address is a full base URL (http://host:port, https://host:port or
	// unix:///path). When empty the Scheme, Host and Port fields apply.
	Address string

	Scheme string
	Host   string
	Port   int

	// Datacenter is appended to every request as the dc query parameter
	// when set.
	Datacenter string
	// Token is appended to every request as the token query parameter
	// when set.
	Token string

	// Timeout bounds each request. Zero means DefaultTimeout; negative
	// disables the per-request deadline.
	Timeout time.Duration

	// TLS material for https endpoints. Paths are loaded when the client
	// is constructed.
	CACert        string
	ClientCert    string
	ClientKey     string
	TLSSkipVerify bool
}

// DefaultConfig returns a Config pointing at the local agent on the
// default port.
func DefaultConfig() Config {
	return Config{
		Scheme:  DefaultScheme,
		Host:    DefaultHost,
		Port:    DefaultPort,
		Timeout: DefaultTimeout,
	}
}

// ConfigFromEnv builds a Config from the SCOUT_* environment variables,
// falling back to defaults for anything unset. Reading the environment
// happens here and nowhere else; New never consults it.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if addr := strings.TrimSpace(os.Getenv(EnvHTTPAddr)); addr != "" {
		cfg.Address = addr
	}
	if host := strings.TrimSpace(os.Getenv(EnvHost)); host != "" {
		cfg.Host = host
	}
	if port := strings.TrimSpace(os.Getenv(EnvPort)); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	cfg.Token = strings.TrimSpace(os.Getenv(EnvToken))
	cfg.Datacenter = strings.TrimSpace(os.Getenv(EnvDatacenter))
	return cfg
}

// baseAddress resolves the configured endpoint to a normalized base URL
// without the API version suffix.
func (c Config) baseAddress() (string, error) {
	if addr := strings.TrimSpace(c.Address); addr != "" {
		return normalizeAddress(addr)
	}
	scheme := c.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || port > 65535 {
		return "", fmt.Errorf("scout: invalid port %d", port)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port), nil
}

// normalizeAddress validates an explicit address and ensures it carries a
// scheme and, for TCP endpoints, a port.
func normalizeAddress(addr string) (string, error) {
	if strings.HasPrefix(addr, "unix://") {
		return addr, nil
	}
	if !strings.Contains(addr, "://") {
		addr = DefaultScheme + "://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("scout: parse address %q: %w", addr, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return "", fmt.Errorf("scout: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("scout: address %q missing host", addr)
	}
	if u.Port() == "" {
		u.Host = u.Host + ":" + strconv.Itoa(DefaultPort)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}

// requestTimeout maps the configured Timeout onto the value the transport
// uses: zero selects the default, negative disables it.
func (c Config) requestTimeout() time.Duration {
	switch {
	case c.Timeout == 0:
		return DefaultTimeout
	case c.Timeout < 0:
		return 0
	default:
		return c.Timeout
	}
}
