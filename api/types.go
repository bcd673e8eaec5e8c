// Package api defines the wire-level request and response structures
// exchanged with the HTTP API, along with the client-side validation the
// server would otherwise reject at runtime.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// KVPair is one row of a key/value read. Value arrives base64-encoded on
// the wire; encoding/json decodes it into raw bytes.
type KVPair struct {
	// Key is the full key path.
	Key string `json:"Key"`
	// CreateIndex is the raft index at which the key was created.
	CreateIndex uint64 `json:"CreateIndex"`
	// ModifyIndex is the raft index of the last write, used for
	// check-and-set updates.
	ModifyIndex uint64 `json:"ModifyIndex"`
	// LockIndex counts successful lock acquisitions on the key.
	LockIndex uint64 `json:"LockIndex"`
	// Flags is an opaque 64-bit value stored alongside the key.
	Flags uint64 `json:"Flags"`
	// Session holds the session currently locking the key, if any.
	Session string `json:"Session,omitempty"`
	// Value is the stored payload.
	Value []byte `json:"Value"`
}

// Decoded returns the stored value in its most useful shape: JSON payloads
// decode to their native Go value and anything else comes back as a
// string. A key with no value yields nil.
func (p *KVPair) Decoded() any {
	if len(p.Value) == 0 {
		return nil
	}
	var nested any
	if err := json.Unmarshal(p.Value, &nested); err == nil {
		return nested
	}
	return string(p.Value)
}

// Session behaviors control what happens to held locks when a session is
// invalidated.
const (
	SessionBehaviorRelease = "release"
	SessionBehaviorDelete  = "delete"
)

// SessionOptions describes a session to create. All fields are optional;
// the server fills in defaults.
type SessionOptions struct {
	Name      string   `json:"Name,omitempty"`
	Node      string   `json:"Node,omitempty"`
	Behavior  string   `json:"Behavior,omitempty"`
	LockDelay string   `json:"LockDelay,omitempty"`
	TTL       string   `json:"TTL,omitempty"`
	Checks    []string `json:"Checks,omitempty"`
}

// Validate rejects behaviors the server does not understand.
func (o *SessionOptions) Validate() error {
	switch o.Behavior {
	case "", SessionBehaviorRelease, SessionBehaviorDelete:
		return nil
	}
	return fmt.Errorf("api: invalid session behavior %q", o.Behavior)
}

// Health check states.
const (
	CheckUnknown  = "unknown"
	CheckPassing  = "passing"
	CheckWarning  = "warning"
	CheckCritical = "critical"
)

// ValidCheckState reports whether state is one of the states the server
// tracks.
func ValidCheckState(state string) bool {
	switch state {
	case CheckUnknown, CheckPassing, CheckWarning, CheckCritical:
		return true
	}
	return false
}

// CheckDefinition describes a health check to register with the agent.
// Exactly one probe mechanism must be set: Script, HTTP, TCP or TTL.
type CheckDefinition struct {
	ID        string `json:"ID,omitempty"`
	Name      string `json:"Name"`
	Notes     string `json:"Notes,omitempty"`
	ServiceID string `json:"ServiceID,omitempty"`

	Script string            `json:"Script,omitempty"`
	HTTP   string            `json:"HTTP,omitempty"`
	Method string            `json:"Method,omitempty"`
	Header map[string]string `json:"Header,omitempty"`
	TCP    string            `json:"TCP,omitempty"`
	TTL    string            `json:"TTL,omitempty"`

	// Interval schedules script, HTTP and TCP probes. Required for those
	// mechanisms and rejected for TTL checks.
	Interval string `json:"Interval,omitempty"`
	Timeout  string `json:"Timeout,omitempty"`

	TLSSkipVerify                  bool   `json:"TLSSkipVerify,omitempty"`
	Status                         string `json:"Status,omitempty"`
	DeregisterCriticalServiceAfter string `json:"DeregisterCriticalServiceAfter,omitempty"`
}

// Validate enforces the mutual exclusion between probe mechanisms and the
// interval rules before the definition is submitted.
func (c *CheckDefinition) Validate() error {
	if c.Name == "" {
		return errors.New("api: check name required")
	}
	mechanisms := 0
	for _, set := range []bool{c.Script != "", c.HTTP != "", c.TCP != "", c.TTL != ""} {
		if set {
			mechanisms++
		}
	}
	if mechanisms == 0 {
		return fmt.Errorf("api: check %q needs one of script, http, tcp or ttl", c.Name)
	}
	if mechanisms > 1 {
		return fmt.Errorf("api: check %q may use only one probe mechanism", c.Name)
	}
	if c.TTL != "" {
		if c.Interval != "" {
			return fmt.Errorf("api: check %q: ttl checks take no interval", c.Name)
		}
	} else if c.Interval == "" {
		return fmt.Errorf("api: check %q requires an interval", c.Name)
	}
	if c.HTTP == "" && (c.Method != "" || len(c.Header) > 0 || c.TLSSkipVerify) {
		return fmt.Errorf("api: check %q: http options require an http probe", c.Name)
	}
	if c.Method != "" {
		switch c.Method {
		case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions:
		default:
			return fmt.Errorf("api: check %q: invalid http method %q", c.Name, c.Method)
		}
	}
	if c.Status != "" && !ValidCheckState(c.Status) {
		return fmt.Errorf("api: check %q: invalid initial status %q", c.Name, c.Status)
	}
	return nil
}

// ServiceRegistration describes a service to register with the local
// agent.
type ServiceRegistration struct {
	ID                string            `json:"ID,omitempty"`
	Name              string            `json:"Name"`
	Address           string            `json:"Address,omitempty"`
	Port              int               `json:"Port,omitempty"`
	Tags              []string          `json:"Tags,omitempty"`
	Meta              map[string]string `json:"Meta,omitempty"`
	EnableTagOverride bool              `json:"EnableTagOverride,omitempty"`
	Check             *CheckDefinition  `json:"Check,omitempty"`
	Checks            []CheckDefinition `json:"Checks,omitempty"`
}

// Validate checks the registration before submission.
func (s *ServiceRegistration) Validate() error {
	if s.Name == "" {
		return errors.New("api: service name required")
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("api: service %q: invalid port %d", s.Name, s.Port)
	}
	if s.Check != nil && len(s.Checks) > 0 {
		return fmt.Errorf("api: service %q: set either Check or Checks, not both", s.Name)
	}
	if s.Check != nil {
		if err := s.Check.Validate(); err != nil {
			return err
		}
	}
	for i := range s.Checks {
		if err := s.Checks[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CatalogRegistration registers a node, and optionally a service and
// check, directly in the catalog.
type CatalogRegistration struct {
	Node       string         `json:"Node"`
	Address    string         `json:"Address"`
	Datacenter string         `json:"Datacenter,omitempty"`
	Service    map[string]any `json:"Service,omitempty"`
	Check      map[string]any `json:"Check,omitempty"`
}

// Validate checks the registration before submission.
func (r *CatalogRegistration) Validate() error {
	if r.Node == "" {
		return errors.New("api: catalog registration requires a node")
	}
	if r.Address == "" {
		return errors.New("api: catalog registration requires an address")
	}
	return nil
}

// CatalogDeregistration removes a node, service or check from the
// catalog. Only Node is required; ServiceID or CheckID narrow the removal
// to a single entry.
type CatalogDeregistration struct {
	Node       string `json:"Node"`
	Datacenter string `json:"Datacenter,omitempty"`
	ServiceID  string `json:"ServiceID,omitempty"`
	CheckID    string `json:"CheckID,omitempty"`
}

// Validate checks the deregistration before submission.
func (d *CatalogDeregistration) Validate() error {
	if d.Node == "" {
		return errors.New("api: catalog deregistration requires a node")
	}
	return nil
}

// Coordinate is a network tomography coordinate as maintained by the
// server's gossip layer.
type Coordinate struct {
	Vec        []float64 `json:"Vec"`
	Error      float64   `json:"Error"`
	Adjustment float64   `json:"Adjustment"`
	Height     float64   `json:"Height"`
}

// CoordinateEntry pairs a node name with its coordinate.
type CoordinateEntry struct {
	Node  string     `json:"Node"`
	Coord Coordinate `json:"Coord"`
}

// EventOptions narrows which agents receive a fired event. Each filter is
// a regular expression evaluated server-side.
type EventOptions struct {
	NodeFilter    string
	ServiceFilter string
	TagFilter     string
}
