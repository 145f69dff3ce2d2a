package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	OpSignUpload = "sign_upload"
	OpSignRead   = "sign_read"
	OpStat       = "stat"
	OpPut        = "put"
	OpList       = "list"
	OpDelete     = "delete"
)

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

type grant struct {
	op      string
	bucket  string
	key     string
	expires time.Time
}

// Memory is an in-process Store. It serves its own signed URLs over HTTP so
// the full upload flow works without an external service, and it counts
// calls so tests can assert on the exact storage traffic.
type Memory struct {
	// BaseURL is the address the handler is mounted on, signed URLs are built
	// from it.
	BaseURL string
	Now     func() time.Time

	mu          sync.Mutex
	buckets     map[string]map[string]*memObject
	unavailable map[string]bool
	grants      map[string]grant
	calls       map[string]int
}

func NewMemory(baseURL string, buckets ...string) *Memory {
	m := &Memory{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		Now:         time.Now,
		buckets:     make(map[string]map[string]*memObject),
		unavailable: make(map[string]bool),
		grants:      make(map[string]grant),
		calls:       make(map[string]int),
	}

	for _, b := range buckets {
		m.buckets[b] = make(map[string]*memObject)
	}

	return m
}

// SetUnavailable makes every operation on bucket fail, as if it was missing
// or rejected by a policy.
func (m *Memory) SetUnavailable(bucket string, unavailable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.unavailable[bucket] = unavailable
}

// Calls reports how many times op was invoked against bucket.
func (m *Memory) Calls(op, bucket string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls[op+":"+bucket]
}

// bucket must be called with the lock held.
func (m *Memory) bucket(op, name string) (map[string]*memObject, error) {
	m.calls[op+":"+name]++

	b, ok := m.buckets[name]
	if !ok || m.unavailable[name] {
		return nil, fmt.Errorf("%w: %s", ErrBucketUnavailable, name)
	}

	return b, nil
}

func (m *Memory) sign(op, bucket, key string, ttl time.Duration) (string, error) {
	token, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	now := m.Now()
	for t, g := range m.grants {
		if !now.Before(g.expires) {
			delete(m.grants, t)
		}
	}

	m.grants[token] = grant{
		op:      op,
		bucket:  bucket,
		key:     key,
		expires: now.Add(ttl),
	}

	return fmt.Sprintf("%s/%s/%s?token=%s", m.BaseURL, bucket, key, url.QueryEscape(token)), nil
}

func (m *Memory) SignUpload(_ context.Context, bucket, key, _ string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.bucket(OpSignUpload, bucket); err != nil {
		return "", err
	}

	return m.sign(OpSignUpload, bucket, key, ttl)
}

func (m *Memory) SignRead(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.bucket(OpSignRead, bucket)
	if err != nil {
		return "", err
	}

	if _, ok := b[key]; !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
	}

	return m.sign(OpSignRead, bucket, key, ttl)
}

func (m *Memory) Stat(_ context.Context, bucket, key string) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.bucket(OpStat, bucket)
	if err != nil {
		return nil, err
	}

	o, ok := b[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
	}

	return &Object{
		Key:          key,
		Size:         int64(len(o.data)),
		ContentType:  o.contentType,
		LastModified: o.modified,
	}, nil
}

func (m *Memory) Put(_ context.Context, bucket, key string, body io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read body, %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.bucket(OpPut, bucket)
	if err != nil {
		return err
	}

	b[key] = &memObject{data: data, contentType: contentType, modified: m.Now()}
	return nil
}

func (m *Memory) List(_ context.Context, bucket, prefix string) ([]Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.bucket(OpList, bucket)
	if err != nil {
		return nil, err
	}

	var objects []Object
	for k, o := range b {
		if !strings.HasPrefix(k, prefix) {
			continue
		}

		objects = append(objects, Object{
			Key:          k,
			Size:         int64(len(o.data)),
			ContentType:  o.contentType,
			LastModified: o.modified,
		})
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (m *Memory) Delete(_ context.Context, bucket string, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.bucket(OpDelete, bucket)
	if err != nil {
		return err
	}

	for _, k := range keys {
		delete(b, k)
	}

	return nil
}

// ServeHTTP accepts PUT and GET requests on URLs produced by SignUpload and
// SignRead. The request path is expected to be /{bucket}/{key}. Upload
// grants are single use.
func (m *Memory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if !ok || key == "" {
		http.Error(w, "invalid object path", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")

	var op string
	switch r.Method {
	case http.MethodPut:
		op = OpSignUpload
	case http.MethodGet:
		op = OpSignRead
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m.mu.Lock()
	g, found := m.grants[token]
	valid := found && g.op == op && g.bucket == bucket && g.key == key && m.Now().Before(g.expires)
	if found && (op == OpSignUpload || !m.Now().Before(g.expires)) {
		delete(m.grants, token)
	}
	m.mu.Unlock()

	if !valid {
		http.Error(w, "signature invalid or expired", http.StatusForbidden)
		return
	}

	switch op {
	case OpSignUpload:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		err = m.Put(r.Context(), bucket, key, bytes.NewReader(data), int64(len(data)), r.Header.Get("Content-Type"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
	case OpSignRead:
		m.mu.Lock()
		o, ok := m.buckets[bucket][key]
		m.mu.Unlock()

		if !ok {
			http.Error(w, "object not found", http.StatusNotFound)
			return
		}

		if o.contentType != "" {
			w.Header().Set("Content-Type", o.contentType)
		}
		w.Write(o.data)
	}
}
