package selector

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Default thresholds. Config fields left at zero fall back to these.
const (
	DefaultWeakAccuracy    = 70.0
	DefaultWeakMinAttempts = 3
	DefaultMissedFraction  = 1.0
)

// Config holds the tier thresholds used by the Selector.
type Config struct {
	// WeakAccuracy is the accuracy (0-100) below which a topic is weak.
	WeakAccuracy float64 `mapstructure:"weak_accuracy"`

	// WeakMinAttempts is the number of attempts a topic needs before its
	// accuracy is trusted.
	WeakMinAttempts int `mapstructure:"weak_min_attempts"`

	// MissedFraction caps the previously-missed tier at
	// ceil(count * MissedFraction) items. Values above 1 are treated as 1.
	MissedFraction float64 `mapstructure:"missed_fraction"`
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{
		WeakAccuracy:    DefaultWeakAccuracy,
		WeakMinAttempts: DefaultWeakMinAttempts,
		MissedFraction:  DefaultMissedFraction,
	}
}

func (c Config) withDefaults() Config {
	if c.WeakAccuracy <= 0 {
		c.WeakAccuracy = DefaultWeakAccuracy
	}
	if c.WeakMinAttempts <= 0 {
		c.WeakMinAttempts = DefaultWeakMinAttempts
	}
	if c.MissedFraction <= 0 || c.MissedFraction > 1 {
		c.MissedFraction = DefaultMissedFraction
	}
	return c
}

// Options carries the per-call inputs of Select. All fields are optional.
type Options struct {
	ExcludeIDs          []string
	PreviouslyMissedIDs []string
	DueIDs              []string
	TopicStats          []TopicStat
}

// Selector builds deduplicated, tier-ordered practice sets from an item pool.
// It is safe for concurrent use.
type Selector struct {
	cfg Config

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New creates a Selector with a time-seeded random source.
func New(cfg Config) *Selector {
	return NewWithRand(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSeeded creates a Selector whose shuffles are reproducible for a seed.
func NewSeeded(cfg Config, seed int64) *Selector {
	return NewWithRand(cfg, rand.New(rand.NewSource(seed)))
}

// NewWithRand creates a Selector drawing from rng.
func NewWithRand(cfg Config, rng *rand.Rand) *Selector {
	return &Selector{cfg: cfg.withDefaults(), rng: rng}
}

// Config returns the effective thresholds.
func (s *Selector) Config() Config {
	return s.cfg
}

// Select picks up to count items from pool. Tiers are filled in order:
// previously missed, due, weak-area topics (round-robin), then random fill.
// The result holds exactly min(count, unique non-excluded items) entries and
// never repeats an ID. Empty pools and non-positive counts yield an empty
// selection.
func (s *Selector) Select(pool []Item, count int, opts Options) Selection {
	if count <= 0 || len(pool) == 0 {
		return Selection{}
	}

	excluded := toSet(opts.ExcludeIDs)
	seen := make(map[string]bool, len(pool))
	byID := make(map[string]Item, len(pool))
	available := make([]Item, 0, len(pool))
	for _, it := range pool {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		if excluded[it.ID] {
			continue
		}
		byID[it.ID] = it
		available = append(available, it)
	}
	if len(available) == 0 {
		return Selection{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := newPicker(min(count, len(available)))

	missedCap := int(math.Ceil(float64(count) * s.cfg.MissedFraction))
	p.takeAll(s.shuffle(lookup(opts.PreviouslyMissedIDs, byID)), missedCap, ReasonMissed)
	p.takeAll(s.shuffle(lookup(opts.DueIDs, byID)), p.want, ReasonDue)
	s.fillWeakAreas(p, available, opts.TopicStats, count)

	var rest []Item
	for _, it := range available {
		if !p.selected[it.ID] {
			rest = append(rest, it)
		}
	}
	p.takeAll(s.shuffle(rest), p.want, ReasonFresh)

	return p.sel
}

// fillWeakAreas round-robins across weak topics that still have candidates,
// taking at most ceil(count / topics) from each.
func (s *Selector) fillWeakAreas(p *picker, available []Item, stats []TopicStat, count int) {
	if p.full() {
		return
	}

	type group struct {
		topic string
		items []Item
		next  int
		taken int
	}
	var groups []*group
	for _, ts := range WeakTopics(stats, s.cfg) {
		var cands []Item
		for _, it := range available {
			if it.Topic == ts.Topic && !p.selected[it.ID] {
				cands = append(cands, it)
			}
		}
		if len(cands) > 0 {
			groups = append(groups, &group{topic: ts.Topic, items: s.shuffle(cands)})
		}
	}
	if len(groups) == 0 {
		return
	}

	perTopic := (count + len(groups) - 1) / len(groups)
	for progress := true; progress && !p.full(); {
		progress = false
		for _, g := range groups {
			if p.full() {
				return
			}
			if g.taken >= perTopic {
				continue
			}
			for g.next < len(g.items) {
				it := g.items[g.next]
				g.next++
				if p.add(it, Bucket{ItemID: it.ID, Reason: ReasonWeakArea, Topic: g.topic}) {
					g.taken++
					progress = true
					break
				}
			}
		}
	}
}

// shuffle returns a Fisher-Yates shuffled copy of items.
func (s *Selector) shuffle(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// WeakTopics returns the topics whose accuracy is below the weak threshold
// over at least the minimum number of attempts, weakest first. Duplicate and
// empty topics are ignored.
func WeakTopics(stats []TopicStat, cfg Config) []TopicStat {
	cfg = cfg.withDefaults()
	seen := make(map[string]bool, len(stats))
	var weak []TopicStat
	for _, ts := range stats {
		if ts.Topic == "" || seen[ts.Topic] {
			continue
		}
		seen[ts.Topic] = true
		if ts.Accuracy < cfg.WeakAccuracy && ts.Attempted >= cfg.WeakMinAttempts {
			weak = append(weak, ts)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		if weak[i].Accuracy != weak[j].Accuracy {
			return weak[i].Accuracy < weak[j].Accuracy
		}
		return weak[i].Topic < weak[j].Topic
	})
	return weak
}

// picker accumulates the selection and enforces at-most-once.
type picker struct {
	want     int
	selected map[string]bool
	sel      Selection
}

func newPicker(want int) *picker {
	return &picker{
		want:     want,
		selected: make(map[string]bool, want),
		sel: Selection{
			Items:     make([]Item, 0, want),
			Breakdown: make([]Bucket, 0, want),
		},
	}
}

func (p *picker) full() bool {
	return len(p.sel.Items) >= p.want
}

// add appends it unless it was already selected or the picker is full.
func (p *picker) add(it Item, b Bucket) bool {
	if p.full() || p.selected[it.ID] {
		return false
	}
	p.selected[it.ID] = true
	p.sel.Items = append(p.sel.Items, it)
	p.sel.Breakdown = append(p.sel.Breakdown, b)
	return true
}

// takeAll adds items in order until limit of them were added or p is full.
func (p *picker) takeAll(items []Item, limit int, reason Reason) {
	added := 0
	for _, it := range items {
		if added >= limit || p.full() {
			return
		}
		if p.add(it, Bucket{ItemID: it.ID, Reason: reason}) {
			added++
		}
	}
}

// lookup resolves ids against byID in order, skipping unknown and repeated IDs.
func lookup(ids []string, byID map[string]Item) []Item {
	seen := make(map[string]bool, len(ids))
	var out []Item
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
