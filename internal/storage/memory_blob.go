package storage

import (
	"context"
	"sync"
)

// MemoryBlobStore keeps blobs in process memory. URLs point at Base, which the
// caller may serve however it likes.
type MemoryBlobStore struct {
	Base   string
	Bucket string

	mu    sync.Mutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	body        []byte
	contentType string
}

func NewMemoryBlobStore(base, bucket string) *MemoryBlobStore {
	return &MemoryBlobStore{Base: base, Bucket: bucket, blobs: make(map[string]memoryBlob)}
}

func (s *MemoryBlobStore) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = memoryBlob{body: append([]byte(nil), body...), contentType: contentType}
	return nil
}

func (s *MemoryBlobStore) PublicURL(key string) string {
	return publicURL(s.Base, key)
}

func (s *MemoryBlobStore) KeyFromURL(url string) (string, bool) {
	return keyFromPublicURL(s.Base, s.Bucket, url)
}

func (s *MemoryBlobStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return newError(KindNotFound, "remove "+key, nil)
	}
	delete(s.blobs, key)
	return nil
}

// Get returns a stored blob and its content type.
func (s *MemoryBlobStore) Get(key string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	return b.body, b.contentType, ok
}

// Len returns the number of stored blobs.
func (s *MemoryBlobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
