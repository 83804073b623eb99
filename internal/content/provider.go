package content

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rob637/passcpa-sub012/internal/selector"
	"github.com/rob637/passcpa-sub012/internal/store"
)

// Filter narrows an item pool. Empty fields match everything.
type Filter struct {
	Course     string
	Section    string
	Topic      string
	Difficulty selector.Difficulty
}

func (f Filter) key() string {
	return strings.Join([]string{f.Course, f.Section, f.Topic, string(f.Difficulty)}, "\x1f")
}

func (f Filter) itemFilter() store.ItemFilter {
	return store.ItemFilter{
		Course:     f.Course,
		Section:    f.Section,
		Topic:      f.Topic,
		Difficulty: string(f.Difficulty),
	}
}

// ImportResult summarizes an imported pack.
type ImportResult struct {
	Course  string
	Version string
	Items   int
}

// Provider serves item pools from the item store through an LRU cache.
type Provider struct {
	items store.ItemRepo
	cache *Cache
}

// NewProvider creates a provider over items. cacheSize <= 0 uses
// DefaultCacheSize.
func NewProvider(items store.ItemRepo, cacheSize int) *Provider {
	return &Provider{items: items, cache: NewCache(cacheSize)}
}

// Cache exposes the provider's pool cache.
func (p *Provider) Cache() *Cache {
	return p.cache
}

// Pool returns the items matching f, ordered by ID.
func (p *Provider) Pool(ctx context.Context, f Filter) ([]selector.Item, error) {
	key := f.key()
	if items, ok := p.cache.Get(key); ok {
		return items, nil
	}

	records, err := p.items.Query(ctx, f.itemFilter())
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}

	items := make([]selector.Item, 0, len(records))
	for _, r := range records {
		items = append(items, ToItem(r))
	}
	p.cache.Put(key, items)
	return items, nil
}

// Item returns the stored record for id.
func (p *Provider) Item(ctx context.Context, id string) (*store.ItemRecord, error) {
	return p.items.Get(ctx, id)
}

// Import parses a pack and upserts its items. The pool cache is cleared on
// success.
func (p *Provider) Import(ctx context.Context, data []byte) (ImportResult, error) {
	pack, err := Parse(data)
	if err != nil {
		return ImportResult{}, err
	}
	if err := p.items.Upsert(ctx, pack.Items); err != nil {
		return ImportResult{}, fmt.Errorf("store items: %w", err)
	}
	p.cache.Clear()
	return ImportResult{Course: pack.Course, Version: pack.Version, Items: len(pack.Items)}, nil
}

// ImportFile reads and imports the pack at path.
func (p *Provider) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read pack: %w", err)
	}
	return p.Import(ctx, data)
}

// ToItem converts a stored record into a selector item.
func ToItem(r store.ItemRecord) selector.Item {
	return selector.Item{
		ID:         r.ID,
		Topic:      r.Topic,
		Difficulty: selector.ParseDifficulty(r.Difficulty),
		Section:    r.Section,
	}
}
