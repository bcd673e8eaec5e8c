package api

import (
	"errors"
	"fmt"
)

// Legacy ACL token types.
const (
	ACLClientType     = "client"
	ACLManagementType = "management"
)

// ValidACLType reports whether t is a legacy token type the server
// accepts.
func ValidACLType(t string) bool {
	return t == ACLClientType || t == ACLManagementType
}

// ACLPolicy is a named set of rules.
type ACLPolicy struct {
	ID          string   `json:"ID,omitempty"`
	Name        string   `json:"Name"`
	Description string   `json:"Description,omitempty"`
	Rules       string   `json:"Rules,omitempty"`
	Datacenters []string `json:"Datacenters,omitempty"`
}

// Validate checks the policy before submission.
func (p *ACLPolicy) Validate() error {
	if p.Name == "" {
		return errors.New("api: acl policy name required")
	}
	return nil
}

// PolicyLink attaches a policy to a role or token by ID or name. At least
// one of the two must be set.
type PolicyLink struct {
	ID   string `json:"ID,omitempty"`
	Name string `json:"Name,omitempty"`
}

// Validate checks the link before submission.
func (l *PolicyLink) Validate() error {
	if l.ID == "" && l.Name == "" {
		return errors.New("api: policy link requires an id or a name")
	}
	return nil
}

// ServiceIdentity grants a role or token the policy template for one
// service.
type ServiceIdentity struct {
	ServiceName string   `json:"ServiceName"`
	Datacenters []string `json:"Datacenters,omitempty"`
}

// Validate checks the identity before submission.
func (s *ServiceIdentity) Validate() error {
	if s.ServiceName == "" {
		return errors.New("api: service identity requires a service name")
	}
	return nil
}

// ACLRole bundles policies and service identities under one name.
type ACLRole struct {
	ID                string            `json:"ID,omitempty"`
	Name              string            `json:"Name"`
	Description       string            `json:"Description,omitempty"`
	Policies          []PolicyLink      `json:"Policies,omitempty"`
	ServiceIdentities []ServiceIdentity `json:"ServiceIdentities,omitempty"`
}

// Validate checks the role and everything it links before submission.
func (r *ACLRole) Validate() error {
	if r.Name == "" {
		return errors.New("api: acl role name required")
	}
	for i := range r.Policies {
		if err := r.Policies[i].Validate(); err != nil {
			return fmt.Errorf("api: acl role %q: %w", r.Name, err)
		}
	}
	for i := range r.ServiceIdentities {
		if err := r.ServiceIdentities[i].Validate(); err != nil {
			return fmt.Errorf("api: acl role %q: %w", r.Name, err)
		}
	}
	return nil
}

// ACLToken is a token definition linking policies, roles and service
// identities.
type ACLToken struct {
	AccessorID        string            `json:"AccessorID,omitempty"`
	SecretID          string            `json:"SecretID,omitempty"`
	Description       string            `json:"Description,omitempty"`
	Policies          []PolicyLink      `json:"Policies,omitempty"`
	Roles             []PolicyLink      `json:"Roles,omitempty"`
	ServiceIdentities []ServiceIdentity `json:"ServiceIdentities,omitempty"`
	Local             bool              `json:"Local,omitempty"`
	ExpirationTime    string            `json:"ExpirationTime,omitempty"`
	ExpirationTTL     string            `json:"ExpirationTTL,omitempty"`
}

// Validate checks the token and everything it links before submission.
func (t *ACLToken) Validate() error {
	for i := range t.Policies {
		if err := t.Policies[i].Validate(); err != nil {
			return err
		}
	}
	for i := range t.Roles {
		if err := t.Roles[i].Validate(); err != nil {
			return err
		}
	}
	for i := range t.ServiceIdentities {
		if err := t.ServiceIdentities[i].Validate(); err != nil {
			return err
		}
	}
	if t.ExpirationTime != "" && t.ExpirationTTL != "" {
		return errors.New("api: acl token: set either ExpirationTime or ExpirationTTL, not both")
	}
	return nil
}
