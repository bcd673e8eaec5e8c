package scout_test

import (
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"pkt.systems/scout"
)

func TestDemarshalStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"bad request", http.StatusBadRequest, scout.ErrClient},
		{"acl disabled", http.StatusUnauthorized, scout.ErrACLDisabled},
		{"forbidden", http.StatusForbidden, scout.ErrForbidden},
		{"server error", http.StatusInternalServerError, scout.ErrServer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &scout.Response{StatusCode: tc.status, Body: []byte("nope")}
			_, err := resp.Demarshal(false)
			if err == nil {
				t.Fatalf("expected error for status %d", tc.status)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("status %d: got %v, want match for %v", tc.status, err, tc.want)
			}
			var apiErr *scout.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.Status != tc.status {
				t.Fatalf("APIError status = %d, want %d", apiErr.Status, tc.status)
			}
		})
	}
}

func TestDemarshalNotFoundDefault(t *testing.T) {
	resp := &scout.Response{StatusCode: http.StatusNotFound}
	result, err := resp.Demarshal(false)
	if err != nil {
		t.Fatalf("Demarshal: %v", err)
	}
	list, ok := result.([]any)
	if !ok {
		t.Fatalf("expected empty list, got %T", result)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}
}

func TestDemarshalNotFoundRaises(t *testing.T) {
	resp := &scout.Response{StatusCode: http.StatusNotFound}
	if _, err := resp.Demarshal(true); !errors.Is(err, scout.ErrNotFound) {
		t.Fatalf("got %v, want match for ErrNotFound", err)
	}
}

func TestDemarshalSingleObjectCollapse(t *testing.T) {
	resp := &scout.Response{StatusCode: http.StatusOK, Body: []byte(`[{"Name":"only"}]`)}
	result, err := resp.Demarshal(false)
	if err != nil {
		t.Fatalf("Demarshal: %v", err)
	}
	obj, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected collapsed object, got %T", result)
	}
	if obj["Name"] != "only" {
		t.Fatalf("unexpected object %v", obj)
	}
}

func TestDemarshalMultiElementListStaysList(t *testing.T) {
	resp := &scout.Response{StatusCode: http.StatusOK, Body: []byte(`[{"A":1},{"B":2}]`)}
	result, err := resp.Demarshal(false)
	if err != nil {
		t.Fatalf("Demarshal: %v", err)
	}
	list, ok := result.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("expected two-element list, got %#v", result)
	}
}

func TestDemarshalBoolBody(t *testing.T) {
	resp := &scout.Response{StatusCode: http.StatusOK, Body: []byte("true")}
	result, err := resp.Demarshal(false)
	if err != nil {
		t.Fatalf("Demarshal: %v", err)
	}
	if result != true {
		t.Fatalf("got %v (%T), want true", result, result)
	}
}

func TestDemarshalDecodesRowValues(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`{"nested":true}`))
	resp := &scout.Response{
		StatusCode: http.StatusOK,
		Body:       []byte(`[{"Key":"k","Value":"` + encoded + `"}]`),
	}
	result, err := resp.Demarshal(false)
	if err != nil {
		t.Fatalf("Demarshal: %v", err)
	}
	row, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected row object, got %T", result)
	}
	value, ok := row["Value"].(map[string]any)
	if !ok {
		t.Fatalf("expected decoded json value, got %T", row["Value"])
	}
	if value["nested"] != true {
		t.Fatalf("unexpected value %v", value)
	}
}

func TestDemarshalNonJSONBodyReturnsString(t *testing.T) {
	resp := &scout.Response{StatusCode: http.StatusOK, Body: []byte("plain text")}
	result, err := resp.Demarshal(false)
	if err != nil {
		t.Fatalf("Demarshal: %v", err)
	}
	if result != "plain text" {
		t.Fatalf("got %v, want raw string", result)
	}
}

func TestOKStatuses(t *testing.T) {
	ok, err := (&scout.Response{StatusCode: http.StatusOK}).OK(false)
	if err != nil || !ok {
		t.Fatalf("200: ok=%v err=%v", ok, err)
	}
	ok, err = (&scout.Response{StatusCode: http.StatusNotFound}).OK(false)
	if err != nil || ok {
		t.Fatalf("404 lenient: ok=%v err=%v", ok, err)
	}
	if _, err := (&scout.Response{StatusCode: http.StatusForbidden}).OK(false); !errors.Is(err, scout.ErrForbidden) {
		t.Fatalf("403: got %v", err)
	}
}
