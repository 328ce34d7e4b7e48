package assets

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/decker502/blockworld/pkg/observe"
)

// ModelLoader loads a model asynchronously. Exactly one of onComplete or
// onError is invoked, on a goroutine owned by the loader.
type ModelLoader interface {
	Load(path string, onComplete func(*Asset), onError func(error))
}

// ReadFunc reads the raw bytes of an asset path.
type ReadFunc func(path string) ([]byte, error)

// Loader 默认的模型加载器
// 解析结果按路径缓存，同一路径的并发加载共享一次读取
type Loader struct {
	read    ReadFunc
	metrics *observe.Metrics
	tracer  trace.Tracer

	group singleflight.Group
	cache sync.Map // path -> *ModelDef

	inflight sync.WaitGroup
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithMetrics overrides the metrics sink (defaults to observe.DefaultMetrics).
func WithMetrics(m *observe.Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// WithTracer overrides the tracer (defaults to observe.Tracer).
func WithTracer(t trace.Tracer) LoaderOption {
	return func(l *Loader) { l.tracer = t }
}

// NewLoader creates a loader reading files through read.
func NewLoader(read ReadFunc, opts ...LoaderOption) *Loader {
	l := &Loader{read: read}
	for _, opt := range opts {
		opt(l)
	}
	if l.metrics == nil {
		l.metrics = observe.DefaultMetrics()
	}
	if l.tracer == nil {
		l.tracer = observe.Tracer()
	}
	return l
}

// Load implements ModelLoader. It never blocks the caller.
func (l *Loader) Load(path string, onComplete func(*Asset), onError func(error)) {
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		asset, err := l.LoadSync(context.Background(), path)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onComplete != nil {
			onComplete(asset)
		}
	}()
}

// LoadSync loads path on the calling goroutine and returns a fresh instance.
func (l *Loader) LoadSync(ctx context.Context, path string) (*Asset, error) {
	def, err := l.definition(ctx, path)
	if err != nil {
		return nil, err
	}
	return def.Instantiate(), nil
}

// Preload fetches every path concurrently so later loads hit the cache.
func (l *Loader) Preload(ctx context.Context, paths []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		g.Go(func() error {
			_, err := l.definition(gctx, p)
			return err
		})
	}
	return g.Wait()
}

// Cached reports whether path has already been parsed.
func (l *Loader) Cached(path string) bool {
	_, ok := l.cache.Load(path)
	return ok
}

// Wait blocks until every asynchronous Load has invoked its callback.
func (l *Loader) Wait() {
	l.inflight.Wait()
}

func (l *Loader) definition(ctx context.Context, path string) (*ModelDef, error) {
	if def, ok := l.cache.Load(path); ok {
		return def.(*ModelDef), nil
	}

	v, err, _ := l.group.Do(path, func() (interface{}, error) {
		return l.fetch(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ModelDef), nil
}

func (l *Loader) fetch(ctx context.Context, path string) (*ModelDef, error) {
	ctx, span := l.tracer.Start(ctx, "assets.load", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()
	start := time.Now()

	def, err := l.parse(path)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.metrics.RecordModelLoad(ctx, path, observe.StatusError, elapsed)
		log.Printf("[Loader] failed to load %s: %v", path, err)
		return nil, err
	}

	l.cache.Store(path, def)
	l.metrics.RecordModelLoad(ctx, path, observe.StatusOK, elapsed)
	log.Printf("[Loader] loaded %s (%d clips) in %.1fms", path, len(def.Clips), elapsed*1000)
	return def, nil
}

func (l *Loader) parse(path string) (*ModelDef, error) {
	if l.read == nil {
		return nil, fmt.Errorf("failed to read model %s: no reader configured", path)
	}
	data, err := l.read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	def, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return def, nil
}
