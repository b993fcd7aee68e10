package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/dafibh/giderler/giderler-backend/internal/websocket"
)

// MockRecordStore is an in-memory implementation of domain.RecordStore
type MockRecordStore struct {
	mu          sync.Mutex
	Collections map[string]map[string]map[string]any
	NextID      int
	IDFn        func() string

	ListErr   error
	CreateErr error
	GetErr    error
	UpdateErr error
	DeleteErr error
	QueryErr  error

	// CreateErrAfter lets that many Create calls succeed before CreateErr applies
	CreateErrAfter int

	CreateCalls int
	UpdateCalls []UpdateCall
	QueryCalls  []int
}

// UpdateCall records the arguments of one Update call
type UpdateCall struct {
	Collection string
	ID         string
	Fields     map[string]any
}

// NewMockRecordStore creates a new MockRecordStore
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		Collections: make(map[string]map[string]map[string]any),
		NextID:      1,
	}
}

// AddDocument stores a document directly (helper for tests)
func (m *MockRecordStore) AddDocument(collection, id string, fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collection(collection)[id] = copyFields(fields)
}

// Fields returns a copy of a stored document's fields, or nil
func (m *MockRecordStore) Fields(collection, id string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.Collections[collection][id]; ok {
		return copyFields(doc)
	}
	return nil
}

// Count returns the number of documents in a collection
func (m *MockRecordStore) Count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Collections[collection])
}

// List returns every document sorted on the string value of orderBy.Field
func (m *MockRecordStore) List(ctx context.Context, collection string, orderBy domain.OrderBy) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	docs := m.documents(collection)
	sort.SliceStable(docs, func(i, j int) bool {
		a := fmt.Sprint(docs[i].Fields[orderBy.Field])
		b := fmt.Sprint(docs[j].Fields[orderBy.Field])
		if a == b {
			return docs[i].ID < docs[j].ID
		}
		if orderBy.Descending {
			return a > b
		}
		return a < b
	})
	return docs, nil
}

// Create stores fields under a new id
func (m *MockRecordStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil && m.CreateCalls > m.CreateErrAfter {
		return "", m.CreateErr
	}

	var id string
	if m.IDFn != nil {
		id = m.IDFn()
	} else {
		id = fmt.Sprintf("doc-%d", m.NextID)
		m.NextID++
	}
	m.collection(collection)[id] = copyFields(fields)
	return id, nil
}

// Get returns a document by id
func (m *MockRecordStore) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domain.Document{}, m.GetErr
	}
	doc, ok := m.Collections[collection][id]
	if !ok {
		return domain.Document{}, domain.ErrNotFound
	}
	return domain.Document{ID: id, Fields: copyFields(doc)}, nil
}

// Update merges fields into an existing document
func (m *MockRecordStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{Collection: collection, ID: id, Fields: copyFields(fields)})
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	doc, ok := m.Collections[collection][id]
	if !ok {
		return domain.ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// Delete removes a document by id
func (m *MockRecordStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Collections[collection][id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.Collections[collection], id)
	return nil
}

// QueryLimited returns at most limit documents
func (m *MockRecordStore) QueryLimited(ctx context.Context, collection string, limit int) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCalls = append(m.QueryCalls, limit)
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	docs := m.documents(collection)
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (m *MockRecordStore) collection(name string) map[string]map[string]any {
	if m.Collections[name] == nil {
		m.Collections[name] = make(map[string]map[string]any)
	}
	return m.Collections[name]
}

func (m *MockRecordStore) documents(collection string) []domain.Document {
	docs := make([]domain.Document, 0, len(m.Collections[collection]))
	for id, fields := range m.Collections[collection] {
		docs = append(docs, domain.Document{ID: id, Fields: copyFields(fields)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// MockObjectStore is an in-memory implementation of domain.ObjectStore
type MockObjectStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Types     map[string]string
	BaseURL   string
	UploadErr error
	URLErr    error
}

// NewMockObjectStore creates a new MockObjectStore
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
		BaseURL: "https://files.example.test",
	}
}

// Upload stores the object bytes
func (m *MockObjectStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return m.UploadErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.Objects[objectPath] = buf
	m.Types[objectPath] = contentType
	return nil
}

// PublicURL returns BaseURL/objectPath
func (m *MockObjectStore) PublicURL(ctx context.Context, objectPath string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.URLErr != nil {
		return "", m.URLErr
	}
	return m.BaseURL + "/" + objectPath, nil
}

// Has reports whether an object exists at objectPath
func (m *MockObjectStore) Has(objectPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[objectPath]
	return ok
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []websocket.Event
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Types returns the type of every recorded event in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Type
	}
	return types
}
