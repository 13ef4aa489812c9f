package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"llm-relay/api/internal/apperr"
	"llm-relay/api/internal/content"
	"llm-relay/api/internal/decode"
	"llm-relay/api/internal/fetch"
	"llm-relay/api/internal/metrics"
)

const (
	DefaultSize         = 512
	DefaultTTL          = time.Hour
	DefaultStoreTimeout = 5 * time.Second
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Response, error)
}

// TextStore is a second, persistent tier for extracted document text.
type TextStore interface {
	FindText(ctx context.Context, url string) (content.Text, bool, error)
	SaveText(ctx context.Context, url string, t content.Text) error
}

type Options struct {
	// Size caps the number of entries; 0 means unbounded.
	Size int
	// TTL bounds the life of an entry; 0 means entries never expire.
	TTL   time.Duration
	Store TextStore
	// StoreTimeout bounds each document store call.
	StoreTimeout time.Duration
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
}

// Cache maps a URL to its decoded content. Population is single-flighted per
// URL, so concurrent misses on one URL cause exactly one fetch.
type Cache struct {
	lru     *expirable.LRU[string, content.Content]
	group   singleflight.Group
	fetcher Fetcher
	store   TextStore
	storeTO time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func New(f Fetcher, opt Options) *Cache {
	if opt.Size < 0 {
		opt.Size = 0
	}
	if opt.StoreTimeout <= 0 {
		opt.StoreTimeout = DefaultStoreTimeout
	}
	return &Cache{
		lru:     expirable.NewLRU[string, content.Content](opt.Size, nil, opt.TTL),
		fetcher: f,
		store:   opt.Store,
		storeTO: opt.StoreTimeout,
		metrics: opt.Metrics,
		log:     opt.Logger.With().Str("component", "cache").Logger(),
	}
}

func (c *Cache) Len() int { return c.lru.Len() }

// GetOrFetch returns the cached content for url or loads it. A hit never
// touches the network. Failed loads are not cached.
func (c *Cache) GetOrFetch(ctx context.Context, url string, kind content.Kind) (content.Content, error) {
	if v, ok := c.lru.Get(url); ok {
		c.metrics.RecordCacheLookup(kind.String(), "hit")
		return checkKind(url, v, kind)
	}

	// The load outlives a cancelled caller so that callers sharing the flight
	// still get a result. The fetcher's client timeout and StoreTimeout bound it.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(url, func() (any, error) {
		if v, ok := c.lru.Get(url); ok {
			return v, nil
		}
		return c.load(loadCtx, url, kind)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return checkKind(url, res.Val.(content.Content), kind)
	}
}

func (c *Cache) load(ctx context.Context, url string, kind content.Kind) (content.Content, error) {
	if kind == content.KindDocument && c.store != nil {
		t, ok, err := c.findStored(ctx, url)
		switch {
		case err != nil:
			c.log.Warn().Err(err).Str("url", url).Msg("document store lookup failed")
		case ok:
			c.metrics.RecordCacheLookup(kind.String(), "store_hit")
			c.lru.Add(url, t)
			return t, nil
		}
	}

	c.metrics.RecordCacheLookup(kind.String(), "miss")
	start := time.Now()
	v, err := c.fetchDecode(ctx, url, kind)
	c.metrics.RecordFetch(kind.String(), err, time.Since(start))
	if err != nil {
		return nil, err
	}
	c.lru.Add(url, v)
	c.log.Debug().Str("url", url).Str("kind", kind.String()).Dur("took", time.Since(start)).Msg("cached")

	if t, ok := v.(content.Text); ok && c.store != nil {
		if err := c.saveStored(ctx, url, t); err != nil {
			c.log.Warn().Err(err).Str("url", url).Msg("document store save failed")
		}
	}
	return v, nil
}

func (c *Cache) findStored(ctx context.Context, url string) (content.Text, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.storeTO)
	defer cancel()
	return c.store.FindText(ctx, url)
}

func (c *Cache) saveStored(ctx context.Context, url string, t content.Text) error {
	ctx, cancel := context.WithTimeout(ctx, c.storeTO)
	defer cancel()
	return c.store.SaveText(ctx, url, t)
}

func (c *Cache) fetchDecode(ctx context.Context, url string, kind content.Kind) (content.Content, error) {
	resp, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	switch kind {
	case content.KindImage:
		img, err := decode.Image(resp.Body)
		if err != nil {
			return nil, err
		}
		return img, nil
	case content.KindDocument:
		t, err := decode.Document(resp.Body, resp.ContentType)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown content kind %d", kind)
	}
}

func checkKind(url string, v content.Content, want content.Kind) (content.Content, error) {
	if v.Kind() != want {
		return nil, apperr.New(apperr.Decode, fmt.Sprintf("%s was loaded as %s, not %s", url, v.Kind(), want))
	}
	return v, nil
}
