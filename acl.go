package scout

import (
	"context"
	"fmt"

	"pkt.systems/scout/api"
)

// ACL manages access control tokens. The 401 status maps to
// ErrACLDisabled when the cluster runs without ACL support; 403 maps to
// ErrForbidden when the configured token lacks rights.
type ACL struct {
	endpoint
}

// Create registers a new token and returns its ID. The type must be
// "client" or "management".
func (a *ACL) Create(ctx context.Context, name, aclType, rules string) (string, error) {
	if !api.ValidACLType(aclType) {
		return "", fmt.Errorf("scout: invalid acl type %q", aclType)
	}
	payload := map[string]string{"Name": name, "Type": aclType}
	if rules != "" {
		payload["Rules"] = rules
	}
	return a.createToken(ctx, []string{"create"}, payload)
}

// Update changes an existing token in place.
func (a *ACL) Update(ctx context.Context, id, name, aclType, rules string) (bool, error) {
	if !api.ValidACLType(aclType) {
		return false, fmt.Errorf("scout: invalid acl type %q", aclType)
	}
	payload := map[string]string{"ID": id, "Name": name, "Type": aclType}
	if rules != "" {
		payload["Rules"] = rules
	}
	return a.putOK(ctx, []string{"update"}, nil, payload)
}

// Clone copies an existing token and returns the new token's ID.
func (a *ACL) Clone(ctx context.Context, id string) (string, error) {
	return a.createToken(ctx, []string{"clone", id}, nil)
}

// Destroy removes a token.
func (a *ACL) Destroy(ctx context.Context, id string) (bool, error) {
	return a.putOK(ctx, []string{"destroy", id}, nil, nil)
}

// Info returns the token record, or nil when the token does not exist.
func (a *ACL) Info(ctx context.Context, id string) (map[string]any, error) {
	result, err := a.get(ctx, []string{"info", id}, nil, false)
	if err != nil {
		return nil, err
	}
	return asObject(result), nil
}

// List returns every token.
func (a *ACL) List(ctx context.Context) ([]any, error) {
	return a.getList(ctx, []string{"list"}, nil)
}

// Replication returns the ACL replication status of this datacenter.
func (a *ACL) Replication(ctx context.Context) (map[string]any, error) {
	result, err := a.get(ctx, []string{"replication"}, nil, true)
	if err != nil {
		return nil, err
	}
	return asObject(result), nil
}

func (a *ACL) createToken(ctx context.Context, parts []string, payload any) (string, error) {
	result, err := a.putBody(ctx, parts, nil, payload)
	if err != nil {
		return "", err
	}
	obj := asObject(result)
	id, _ := obj["ID"].(string)
	if id == "" {
		return "", fmt.Errorf("scout: acl create returned no id")
	}
	return id, nil
}
