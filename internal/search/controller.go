package search

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/catalog"
	"github.com/hyperjump/aidex/internal/debounce"
	"github.com/hyperjump/aidex/internal/keyword"
	"github.com/hyperjump/aidex/internal/models"
)

// Controller owns the applied SearchQuery for one interactive session.
// Free text is debounced; every other setter applies immediately. After each
// applied change subscribers receive the freshly derived results.
type Controller struct {
	logger    *zap.Logger
	indexes   *IndexCache
	debouncer *debounce.Debouncer

	mu          sync.Mutex
	query       models.SearchQuery
	pendingText *string
	// textGen identifies the latest text input; a timer carrying an older
	// generation is dropped when it finally gets the lock.
	textGen     uint64
	snap        *catalog.Snapshot
	subscribers map[int]func([]models.Tool)
	nextSubID   int
	closed      bool
}

type controllerOptions struct {
	delay     time.Duration
	clock     clockwork.Clock
	logger    *zap.Logger
	keys      []string
	fuzzyOpts []keyword.FuzzyOption
	indexes   *IndexCache
}

// ControllerOption configures a Controller.
type ControllerOption func(*controllerOptions)

// WithDebounce sets the text-input quiet period (default 300ms).
func WithDebounce(d time.Duration) ControllerOption {
	return func(o *controllerOptions) { o.delay = d }
}

// WithClock sets the clock driving the debounce timer.
func WithClock(c clockwork.Clock) ControllerOption {
	return func(o *controllerOptions) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ControllerOption {
	return func(o *controllerOptions) { o.logger = l }
}

// WithKeys sets the fields the fuzzy index searches.
func WithKeys(keys ...string) ControllerOption {
	return func(o *controllerOptions) { o.keys = keys }
}

// WithFuzzyOptions passes options to every fuzzy index the controller builds.
func WithFuzzyOptions(opts ...keyword.FuzzyOption) ControllerOption {
	return func(o *controllerOptions) { o.fuzzyOpts = opts }
}

// WithIndexCache shares an index cache between controllers over the same store.
func WithIndexCache(c *IndexCache) ControllerOption {
	return func(o *controllerOptions) { o.indexes = c }
}

// NewController returns a controller over snap with the default query.
func NewController(snap *catalog.Snapshot, opts ...ControllerOption) *Controller {
	o := controllerOptions{delay: debounce.DefaultDelay}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.indexes == nil {
		o.indexes = NewIndexCache(o.keys, o.fuzzyOpts...)
	}
	var dopts []debounce.Option
	if o.clock != nil {
		dopts = append(dopts, debounce.WithClock(o.clock))
	}
	return &Controller{
		logger:      o.logger,
		indexes:     o.indexes,
		debouncer:   debounce.New(o.delay, dopts...),
		query:       models.DefaultSearchQuery(),
		snap:        snap,
		subscribers: make(map[int]func([]models.Tool)),
	}
}

// Subscribe registers fn to receive results after every applied change.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func([]models.Tool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// SetQueryText records text as pending and applies it once input has been
// quiet for the debounce delay. Only the last call inside a window applies.
func (c *Controller) SetQueryText(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pendingText = &text
	c.textGen++
	gen := c.textGen
	c.mu.Unlock()
	c.debouncer.Schedule(func() { c.applyText(text, gen) })
}

func (c *Controller) applyText(text string, gen uint64) {
	applied := c.apply(func(q *models.SearchQuery) bool {
		if gen != c.textGen {
			return false
		}
		q.Text = text
		c.pendingText = nil
		return true
	})
	if !applied {
		c.logger.Debug("superseded search text dropped", zap.String("text", text))
		return
	}
	c.logger.Debug("search text applied", zap.String("text", text))
}

// SetCategory filters by category; "all" or empty disables the filter.
func (c *Controller) SetCategory(category string) {
	c.update(func(q *models.SearchQuery) {
		if strings.TrimSpace(category) == "" {
			category = models.CategoryAll
		}
		q.Category = category
	})
}

// SetTags replaces the required tag set.
func (c *Controller) SetTags(tags ...string) {
	c.update(func(q *models.SearchQuery) { q.Tags = dedupeFold(tags) })
}

// ToggleTag adds tag to the required set, or removes it if present.
func (c *Controller) ToggleTag(tag string) {
	c.update(func(q *models.SearchQuery) {
		for i, have := range q.Tags {
			if strings.EqualFold(have, tag) {
				q.Tags = append(q.Tags[:i:i], q.Tags[i+1:]...)
				return
			}
		}
		q.Tags = append(q.Tags, tag)
	})
}

// SetPricing replaces the allowed pricing tiers; none means any tier.
func (c *Controller) SetPricing(tiers ...models.Pricing) {
	c.update(func(q *models.SearchQuery) {
		q.Pricing = nil
		for _, p := range tiers {
			if p.Valid() && !containsPricing(q.Pricing, p) {
				q.Pricing = append(q.Pricing, p)
			}
		}
	})
}

// TogglePricing adds or removes one pricing tier.
func (c *Controller) TogglePricing(p models.Pricing) {
	if !p.Valid() {
		return
	}
	c.update(func(q *models.SearchQuery) {
		for i, have := range q.Pricing {
			if have == p {
				q.Pricing = append(q.Pricing[:i:i], q.Pricing[i+1:]...)
				return
			}
		}
		q.Pricing = append(q.Pricing, p)
	})
}

// SetSort changes the ordering. Unknown keys are rejected and leave state untouched.
func (c *Controller) SetSort(key models.SortKey) error {
	parsed, err := models.ParseSortKey(string(key))
	if err != nil {
		return err
	}
	c.update(func(q *models.SearchQuery) { q.Sort = parsed })
	return nil
}

// ClearAll cancels pending text and restores the default query. Calling it
// on a default query only re-notifies subscribers.
func (c *Controller) ClearAll() {
	c.debouncer.Cancel()
	c.update(func(q *models.SearchQuery) {
		*q = models.DefaultSearchQuery()
		c.pendingText = nil
		c.textGen++
	})
}

// SetSource swaps the collection. The fuzzy index is rebuilt lazily and only
// when snap differs from the snapshot it was built for.
func (c *Controller) SetSource(snap *catalog.Snapshot) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.snap = snap
	results := c.deriveLocked()
	subs := c.subscriberList()
	c.mu.Unlock()
	notify(subs, results)
}

// Flush applies pending text immediately.
func (c *Controller) Flush() {
	c.debouncer.Flush()
}

// Close stops the debounce timer. Later setters and timer fires are ignored.
func (c *Controller) Close() {
	c.debouncer.Stop()
	c.mu.Lock()
	c.closed = true
	c.pendingText = nil
	c.subscribers = make(map[int]func([]models.Tool))
	c.mu.Unlock()
}

// Query returns a copy of the applied query.
func (c *Controller) Query() models.SearchQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

// PendingText returns text waiting for the debounce window, if any.
func (c *Controller) PendingText() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingText == nil {
		return "", false
	}
	return *c.pendingText, true
}

// Derive returns the results for the applied query over the current snapshot.
// It has no side effects; calling it twice without a change yields equal lists.
func (c *Controller) Derive() []models.Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deriveLocked()
}

func (c *Controller) deriveLocked() []models.Tool {
	return Apply(c.indexes.For(c.snap), c.query)
}

func (c *Controller) update(mutate func(q *models.SearchQuery)) {
	c.apply(func(q *models.SearchQuery) bool {
		mutate(q)
		return true
	})
}

// apply runs mutate under the lock and notifies subscribers unless mutate
// reports that nothing was applied.
func (c *Controller) apply(mutate func(q *models.SearchQuery) bool) bool {
	c.mu.Lock()
	if c.closed || !mutate(&c.query) {
		c.mu.Unlock()
		return false
	}
	results := c.deriveLocked()
	subs := c.subscriberList()
	c.mu.Unlock()
	notify(subs, results)
	return true
}

func (c *Controller) subscriberList() []func([]models.Tool) {
	subs := make([]func([]models.Tool), 0, len(c.subscribers))
	for i := 0; i < c.nextSubID; i++ {
		if fn, ok := c.subscribers[i]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func notify(subs []func([]models.Tool), results []models.Tool) {
	for _, fn := range subs {
		fn(results)
	}
}

func dedupeFold(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		dup := false
		for _, have := range out {
			if strings.EqualFold(have, tag) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, tag)
		}
	}
	return out
}

func containsPricing(tiers []models.Pricing, p models.Pricing) bool {
	for _, have := range tiers {
		if have == p {
			return true
		}
	}
	return false
}
