package scorestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// MemScoreStore is the in-process implementation, safe for concurrent use.
type MemScoreStore struct {
	data *xsync.MapOf[string, *Breakdown]
}

func NewMemScoreStore() *MemScoreStore {
	return &MemScoreStore{
		data: xsync.NewMapOf[string, *Breakdown](),
	}
}

func storeKey(kind Kind, entity string) string {
	return fmt.Sprintf("%s/%s", kind, entity)
}

func (s *MemScoreStore) Get(ctx context.Context, kind Kind, entity string) (*Breakdown, error) {
	b, ok := s.data.Load(storeKey(kind, entity))
	if !ok {
		return nil, nil
	}
	return b.Clone(), nil
}

func (s *MemScoreStore) Put(ctx context.Context, b *Breakdown) error {
	if b == nil || b.Entity == "" {
		return fmt.Errorf("refusing to store empty breakdown")
	}
	s.data.Store(storeKey(b.Kind, b.Entity), b.Clone())
	return nil
}

func (s *MemScoreStore) List(ctx context.Context, kind Kind) ([]string, error) {
	prefix := string(kind) + "/"
	var out []string
	s.data.Range(func(k string, _ *Breakdown) bool {
		if strings.HasPrefix(k, prefix) {
			out = append(out, strings.TrimPrefix(k, prefix))
		}
		return true
	})
	return out, nil
}

func (s *MemScoreStore) Clear(ctx context.Context, kind Kind) error {
	prefix := string(kind) + "/"
	s.data.Range(func(k string, _ *Breakdown) bool {
		if strings.HasPrefix(k, prefix) {
			s.data.Delete(k)
		}
		return true
	})
	return nil
}
