package handle

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"llm-relay/api/internal/content"
	"llm-relay/api/internal/llm"
	"llm-relay/api/internal/metrics"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

const DefaultModelTimeout = 180 * time.Second

type Loader interface {
	GetOrFetch(ctx context.Context, url string, kind content.Kind) (content.Content, error)
}

type Handle struct {
	loader       Loader
	engine       llm.Engine
	metrics      *metrics.Metrics
	log          zerolog.Logger
	modelTimeout time.Duration
}

type Options struct {
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
	ModelTimeout time.Duration
}

func New(loader Loader, engine llm.Engine, opt Options) *Handle {
	if opt.ModelTimeout <= 0 {
		opt.ModelTimeout = DefaultModelTimeout
	}
	return &Handle{
		loader:       loader,
		engine:       engine,
		metrics:      opt.Metrics,
		log:          opt.Logger,
		modelTimeout: opt.ModelTimeout,
	}
}

func (h *Handle) logger(c *gin.Context) zerolog.Logger {
	return h.log.With().Str(RequestIDKey, c.GetString(RequestIDKey)).Logger()
}
