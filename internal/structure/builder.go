package structure

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/texstruct/internal/texast"
)

// Source supplies raw content and a parsed AST per file path. Get must not
// block; HasPending reports whether a production for the path is in flight;
// ForceRefresh synchronously (re)loads the path.
type Source interface {
	Get(path string) (content string, doc *texast.Document, ok bool)
	HasPending(path string) bool
	ForceRefresh(ctx context.Context, path string) error
}

// Builder constructs outline trees. It is safe for concurrent use: every
// Construct call works on its own private cache.
type Builder struct {
	src Source
	log *slog.Logger
}

func NewBuilder(src Source, log *slog.Logger) *Builder {
	return &Builder{src: src, log: log}
}

// maxSourceWaits bounds the polling loop for a file whose production is still
// pending before a refresh is forced.
const maxSourceWaits = 5

// run carries the per-construction state: the immutable config snapshot, the
// path-keyed forest cache and the splice guard. It is never shared between
// Construct calls.
type run struct {
	ctx      context.Context
	src      Source
	cfg      Config
	log      *slog.Logger
	rootDir  string
	rank     rankFunc
	commands map[string]bool
	envs     map[string]bool
	floats   map[string]bool
	cache    map[string][]*Element
	spliced  map[string]bool
}

// Construct builds the complete nested, numbered outline for rootFile. An
// empty rootFile yields an empty outline; per-file source failures are logged
// and skipped, never failing the whole construction.
func (b *Builder) Construct(ctx context.Context, rootFile string, cfg Config) ([]*Element, error) {
	if rootFile == "" {
		return []*Element{}, nil
	}
	if strings.EqualFold(filepath.Ext(rootFile), ".md") || strings.EqualFold(filepath.Ext(rootFile), ".markdown") {
		return b.constructMarkdown(ctx, rootFile, cfg)
	}

	abs, err := filepath.Abs(rootFile)
	if err != nil {
		return nil, err
	}

	r := &run{
		ctx:      ctx,
		src:      b.src,
		cfg:      cfg,
		log:      b.log,
		rootDir:  filepath.Dir(abs),
		rank:     cfg.sectionRanks(),
		commands: toSet(cfg.Commands),
		envs:     toSet(cfg.Environments),
		floats:   toSet(cfg.Floats),
		cache:    make(map[string][]*Element),
		spliced:  make(map[string]bool),
	}

	r.extractFile(abs)
	// The root counts as expanded so an inclusion cycling back to it stays
	// an unexpanded leaf.
	r.spliced[abs] = true
	elems := r.assemble(r.cache[abs])
	if cfg.NumberFloats {
		numberFloats(elems)
	}
	if cfg.NumberSections {
		numberSections(elems, "", -1, r.rank)
	}
	return elems, nil
}

// load waits for the source to produce the file, with a bounded number of
// jittered delays while a production is pending, then forces a refresh and
// takes whatever is available.
func (r *run) load(path string) (string, *texast.Document, bool) {
	for attempt := 0; attempt < maxSourceWaits; attempt++ {
		if content, doc, ok := r.src.Get(path); ok {
			return content, doc, true
		}
		if !r.src.HasPending(path) {
			break
		}
		select {
		case <-time.After(sourceWaitBackoff(attempt)):
		case <-r.ctx.Done():
			return "", nil, false
		}
	}
	if err := r.src.ForceRefresh(r.ctx, path); err != nil {
		r.log.Warn("source refresh failed", "path", path, "error", err)
	}
	return r.src.Get(path)
}

// sourceWaitBackoff returns the delay before poll attempt n (0-indexed),
// exponential with jitter, capped at 200ms.
func sourceWaitBackoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond
	if base > 200*time.Millisecond {
		base = 200 * time.Millisecond
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}
