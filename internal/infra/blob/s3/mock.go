package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const mockBucket = "mock-bucket"

// NewMockForTests returns a Store backed by an in-memory fake HTTP transport that
// understands Head/Get/Put/Delete/ListObjectsV2. Listing pages hold at most
// pageSize keys; zero disables paging.
func NewMockForTests(pageSize int) *Store {
	rt := &mockRoundTripper{state: make(map[string]mockObj), pageSize: pageSize}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(defaultRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return newStore(client, mockBucket)
}

type mockRoundTripper struct {
	mu       sync.Mutex
	state    map[string]mockObj
	pageSize int
}

type mockObj struct {
	body        []byte
	contentType string
	metadata    http.Header
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		return m.list(req.URL.Query().Get("prefix"), req.URL.Query().Get("continuation-token")), nil
	}
	switch req.Method {
	case http.MethodHead:
		st, ok := m.state[key]
		if !ok {
			return respond(http.StatusNotFound, nil, http.Header{}), nil
		}
		return respond(http.StatusOK, nil, st.headers()), nil
	case http.MethodGet:
		st, ok := m.state[key]
		if !ok {
			return respond(http.StatusNotFound, nil, http.Header{}), nil
		}
		return respond(http.StatusOK, st.body, st.headers()), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		meta := http.Header{}
		for name, values := range req.Header {
			if strings.HasPrefix(strings.ToLower(name), "x-amz-meta-") {
				meta[name] = values
			}
		}
		m.state[key] = mockObj{body: body, contentType: req.Header.Get("Content-Type"), metadata: meta}
		return respond(http.StatusOK, nil, http.Header{"Etag": {"\"etag\""}}), nil
	case http.MethodDelete:
		delete(m.state, key)
		return respond(http.StatusNoContent, nil, http.Header{}), nil
	}
	return respond(http.StatusNotImplemented, nil, http.Header{}), nil
}

func (m *mockRoundTripper) list(prefix, token string) *http.Response {
	var keys []string
	for k := range m.state {
		if strings.HasPrefix(k, prefix) && k > token {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	truncated := m.pageSize > 0 && len(keys) > m.pageSize
	if truncated {
		keys = keys[:m.pageSize]
	}
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><ListBucketResult>`)
	fmt.Fprintf(&b, "<IsTruncated>%t</IsTruncated>", truncated)
	if truncated {
		fmt.Fprintf(&b, "<NextContinuationToken>%s</NextContinuationToken>", keys[len(keys)-1])
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><ETag>&quot;etag&quot;</ETag><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(m.state[k].body))
	}
	b.WriteString("</ListBucketResult>")
	return respond(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}})
}

func (o mockObj) headers() http.Header {
	h := http.Header{
		"Content-Length": {strconv.Itoa(len(o.body))},
		"Content-Type":   {o.contentType},
		"Etag":           {"\"etag\""},
		"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
	}
	for name, values := range o.metadata {
		h[name] = values
	}
	return h
}

func respond(status int, body []byte, header http.Header) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: header, ContentLength: int64(len(body))}
}

// decodeChunked unwraps a single-chunk aws-chunked payload: <hex>\r\n<body>\r\n0\r\n...
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	n, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil || n <= 0 || int64(len(parts[1])) != n || parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}
