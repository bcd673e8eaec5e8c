package scout

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"pkt.systems/pslog"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Transport issues HTTP requests against the server and normalizes the
// outcome into a Response. Every transport-level failure is wrapped in a
// *RequestError so callers never depend on net/http error types. One
// Transport owns one *http.Client and is safe for concurrent use; no
// locking is added beyond what the HTTP client provides.
type Transport struct {
	client  *http.Client
	timeout time.Duration
	logger  pslog.Base
}

func newTransport(client *http.Client, timeout time.Duration, logger pslog.Base) *Transport {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Transport{client: client, timeout: timeout, logger: logger}
}

// Get performs a GET request. The configured timeout applies unless the
// caller's context carries an earlier deadline.
func (t *Transport) Get(ctx context.Context, uri string) (*Response, error) {
	return t.do(ctx, http.MethodGet, uri, nil, "", t.timeout)
}

// Delete performs a DELETE request.
func (t *Transport) Delete(ctx context.Context, uri string) (*Response, error) {
	return t.do(ctx, http.MethodDelete, uri, nil, "", t.timeout)
}

// Put performs a PUT request. A nil body sends no payload. String and byte
// bodies are sent verbatim with a form content type; any other value is
// JSON-encoded and sent as application/json.
func (t *Transport) Put(ctx context.Context, uri string, body any) (*Response, error) {
	reader, contentType, err := prepareBody(body)
	if err != nil {
		return nil, err
	}
	return t.do(ctx, http.MethodPut, uri, reader, contentType, t.timeout)
}

// GetStream performs a GET request and returns a lazy line iterator over
// the response body. No timeout is applied; the stream ends when the
// caller closes it or the connection drops.
func (t *Transport) GetStream(ctx context.Context, uri string) (*LineStream, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return nil, err
	}
	t.logger.Trace("transport.stream.start", "uri", uri)
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &RequestError{URI: uri, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		envelope := &Response{StatusCode: resp.StatusCode, Body: data, Headers: resp.Header}
		if _, err := envelope.OK(true); err != nil {
			return nil, err
		}
		return nil, &APIError{Status: resp.StatusCode, Body: data}
	}
	return newLineStream(resp.Body), nil
}

func (t *Transport) do(ctx context.Context, method, uri string, body io.Reader, contentType string, timeout time.Duration) (*Response, error) {
	reqCtx, cancel := requestContext(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, method, uri, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Debug("transport.error", "method", method, "uri", uri, "error", err, "duration", time.Since(start))
		return nil, &RequestError{URI: uri, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{URI: uri, Err: err}
	}
	t.logger.Trace("transport.response", "method", method, "uri", uri, "status", resp.StatusCode, "duration", time.Since(start))
	return &Response{StatusCode: resp.StatusCode, Body: data, Headers: resp.Header}, nil
}

func prepareBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return strings.NewReader(v), contentTypeForm, nil
	case []byte:
		return bytes.NewReader(v), contentTypeForm, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("scout: encode request body: %w", err)
		}
		return bytes.NewReader(data), contentTypeJSON, nil
	}
}

func requestContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, timeout)
}

// CloseIdleConnections releases idle connections held by the underlying
// HTTP client.
func (t *Transport) CloseIdleConnections() {
	if t == nil || t.client == nil {
		return
	}
	t.client.CloseIdleConnections()
}

// buildHTTPClient constructs the HTTP client and normalized base URL for
// an endpoint address. Addresses of the form unix:///path/to/socket dial a
// unix-domain socket and rewrite the base to http://unix.
func buildHTTPClient(rawBase string, cfg Config) (*http.Client, string, error) {
	trimmed := strings.TrimSpace(rawBase)
	if trimmed == "" {
		return nil, "", fmt.Errorf("scout: address required")
	}
	if strings.HasPrefix(trimmed, "unix://") {
		return newUnixHTTPClient(trimmed, cfg.requestTimeout())
	}
	trimmed = strings.TrimRight(trimmed, "/")
	client := &http.Client{}
	if strings.HasPrefix(trimmed, "https://") {
		tlsConfig, err := buildTLSConfig(cfg)
		if err != nil {
			return nil, "", err
		}
		if tlsConfig != nil {
			transport := http.DefaultTransport.(*http.Transport).Clone()
			transport.TLSClientConfig = tlsConfig
			client.Transport = transport
		}
	}
	return client, trimmed, nil
}

func newUnixHTTPClient(raw string, timeout time.Duration) (*http.Client, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", fmt.Errorf("scout: parse unix address: %w", err)
	}
	socketPath := u.Path
	if u.Host != "" {
		if socketPath == "" || socketPath == "/" {
			socketPath = "/" + u.Host
		} else {
			socketPath = "/" + u.Host + socketPath
		}
	}
	if socketPath == "" {
		return nil, "", fmt.Errorf("scout: unix address missing socket path")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 15 * time.Second}
	transport.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.DialContext(ctx, "unix", socketPath)
	}
	transport.DialTLSContext = nil
	transport.TLSClientConfig = nil
	return &http.Client{Transport: transport}, "http://unix", nil
}

func buildTLSConfig(cfg Config) (*tls.Config, error) {
	if cfg.CACert == "" && cfg.ClientCert == "" && !cfg.TLSSkipVerify {
		return nil, nil
	}
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.TLSSkipVerify,
	}
	if cfg.CACert != "" {
		pem, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("scout: read ca certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("scout: no certificates found in %s", cfg.CACert)
		}
		tlsConfig.RootCAs = pool
	}
	if cfg.ClientCert != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("scout: load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}
