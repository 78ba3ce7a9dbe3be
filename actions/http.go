package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// HTTPPattern matches the HTTP action names.
const HTTPPattern = `^http\.(get|head|post|put|patch|delete)$`

// NewHTTPClient makes a client with a cookie jar, so cookies set by
// one call in a run are sent by later calls.
func NewHTTPClient(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}, nil
}

// HTTP makes requests for "http.get", "http.post", etc.
//
// Parameters:
//
//	url: required.
//	query: optional map of query parameters.
//	headers: optional map of header values.
//	body: optional.  A string is sent as it is.  Anything else is
//	  sent as JSON.
//
// The output is {status, headers, body}.  The body is parsed as JSON
// when possible.  A non-2xx status is not an error.
type HTTP struct {
	Client *http.Client
	Logger *zap.Logger
}

func (h *HTTP) Do(ctx context.Context, name string, x interface{}) (interface{}, error) {
	m, err := params(name, x)
	if err != nil {
		return nil, err
	}
	u, err := stringParam(name, m, "url")
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimPrefix(name, "http."))

	if q, is := m["query"].(map[string]interface{}); is {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, err
		}
		vs := parsed.Query()
		for k, v := range q {
			vs.Set(k, fmt.Sprintf("%v", v))
		}
		parsed.RawQuery = vs.Encode()
		u = parsed.String()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch vv := m["body"].(type) {
	case nil:
	case string:
		body = strings.NewReader(vv)
	default:
		js, err := json.Marshal(vv)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(js)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if hs, is := m["headers"].(map[string]interface{}); is {
		for k, v := range hs {
			req.Header.Set(k, fmt.Sprintf("%v", v))
		}
	}

	h.logger().Debug("http", zap.String("method", method), zap.String("url", u))

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]interface{}, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	var parsed interface{} = string(bs)
	var js interface{}
	if 0 < len(bs) && json.Unmarshal(bs, &js) == nil {
		parsed = js
	}

	return map[string]interface{}{
		"status":  float64(resp.StatusCode),
		"headers": headers,
		"body":    parsed,
	}, nil
}

func (h *HTTP) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
