package scout

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Response carries the outcome of one HTTP call: status code, raw body
// bytes and headers. It lives only for the duration of the call.
type Response struct {
	// StatusCode is the HTTP status returned by the server.
	StatusCode int
	// Body holds the raw response body bytes.
	Body []byte
	// Headers holds the response headers.
	Headers http.Header
}

// Demarshal converts the raw body into a structured value, applying the
// status-code policy. On 200 the body is decoded per decodeBody. A 404
// returns an empty-list sentinel unless raiseOn404 is set, in which case it
// returns an *APIError matching ErrNotFound. Status codes outside the
// mapped set return the raw body unmodified.
func (r *Response) Demarshal(raiseOn404 bool) (any, error) {
	switch r.StatusCode {
	case http.StatusOK:
		return decodeBody(r.Body), nil
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusInternalServerError:
		return nil, &APIError{Status: r.StatusCode, Body: r.Body}
	case http.StatusNotFound:
		if raiseOn404 {
			return nil, &APIError{Status: r.StatusCode, Body: r.Body}
		}
		return []any{}, nil
	default:
		return string(r.Body), nil
	}
}

// OK applies the status-code policy without decoding the body. It returns
// true for 200, false for a 404 the caller tolerates, and an error for the
// mapped failure statuses.
func (r *Response) OK(raiseOn404 bool) (bool, error) {
	switch r.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		if raiseOn404 {
			return false, &APIError{Status: r.StatusCode, Body: r.Body}
		}
		return false, nil
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusInternalServerError:
		return false, &APIError{Status: r.StatusCode, Body: r.Body}
	}
	return false, nil
}

// decodeBody best-effort decodes a 200 body. Not every 200 body is JSON
// (the leader endpoint returns a bare address string), so parse failures
// return the body as a string. Booleans pass through. A one-element array
// of a single JSON object collapses to that object, since single-resource
// lookups come back as one-element arrays. Rows shaped like KV entries get
// their base64 Value field decoded, and when the decoded bytes parse as
// JSON the parsed form is substituted (failures are swallowed on purpose).
func decodeBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return string(body)
	}
	switch v := value.(type) {
	case bool:
		return v
	case map[string]any:
		decodeRowValue(v)
		return v
	case []any:
		for _, row := range v {
			if m, ok := row.(map[string]any); ok {
				decodeRowValue(m)
			}
		}
		if len(v) == 1 {
			if only, ok := v[0].(map[string]any); ok {
				return only
			}
		}
		return v
	}
	return value
}

// decodeRowValue rewrites row["Value"] from its base64 wire form into the
// stored value. The double decode is best-effort: a Value that is not
// valid base64 is left alone, and decoded bytes that are not JSON stay a
// plain string.
func decodeRowValue(row map[string]any) {
	raw, ok := row["Value"].(string)
	if !ok {
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return
	}
	var nested any
	if json.Unmarshal(decoded, &nested) == nil {
		row["Value"] = nested
		return
	}
	row["Value"] = string(decoded)
}
