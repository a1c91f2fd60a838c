package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dgallion1/vbtree/internal/chunker"
	"github.com/dgallion1/vbtree/internal/config"
	"github.com/dgallion1/vbtree/internal/doctree"
	"github.com/dgallion1/vbtree/internal/parser"
	"github.com/dgallion1/vbtree/internal/stats"
)

// Request describes one document to parse.
type Request struct {
	Filename string // Selects the line source by extension; empty means HTML
	Title    string
	DocType  string // Declared type; inferred from Title when empty
	Chunks   bool
	Chunking chunker.Config // Zero fields fall back to the configured defaults
}

// Service parses documents for the API, the batch workers and the CLI. It is
// safe for concurrent use.
type Service struct {
	cfg   config.Config
	cache *lru.Cache[string, *doctree.Result]
	stats *stats.ParseStats
	log   *slog.Logger
}

func NewService(cfg config.Config, st *stats.ParseStats, log *slog.Logger) (*Service, error) {
	cache, err := lru.New[string, *doctree.Result](max(cfg.CacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}
	if st == nil {
		st = stats.NewParseStats(cfg.StatsWindow)
	}
	return &Service{cfg: cfg, cache: cache, stats: st, log: log}, nil
}

// Stats returns the rolling parse statistics.
func (s *Service) Stats() *stats.ParseStats { return s.stats }

// ResolveType picks the document type for a request: the declared type, else
// one inferred from the title, else fallback.
func ResolveType(declared, title, fallback string) string {
	if declared != "" {
		return declared
	}
	if t := parser.InferType(title); t != "" {
		return t
	}
	return fallback
}

// ProfileFor returns the profile for a resolved document type with the
// configured reference guard applied.
func (s *Service) ProfileFor(docType string) parser.Profile {
	p := parser.ForType(docType)
	p.ReferenceGuard = p.ReferenceGuard && s.cfg.ReferenceGuard
	return p
}

// Parse extracts the structure of data. Identical content parsed with the same
// title and profile is served from the cache since parsing is deterministic.
func (s *Service) Parse(ctx context.Context, data []byte, req Request) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := parser.LineSource(parser.HTMLSource{})
	if req.Filename != "" {
		var err error
		src, err = parser.ForFile(req.Filename, s.cfg.PDFFallbackPdftotext)
		if err != nil {
			return nil, err
		}
	}

	docType := ResolveType(req.DocType, req.Title, s.cfg.DefaultDocType)
	prof := s.ProfileFor(docType)
	info := DocumentInfo{
		Title:       req.Title,
		DocType:     docType,
		Profile:     prof.Name,
		ContentHash: ContentHashHex(data),
		Filename:    req.Filename,
	}

	key := cacheKey(info, prof, src)
	res, hit := s.cache.Get(key)
	if !hit {
		start := time.Now()
		var err error
		res, err = parser.New(prof).ParseSource(src, bytes.NewReader(data), req.Title)
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			s.stats.Record(stats.Sample{Profile: prof.Name, DurationMs: elapsed, Failed: true})
			return nil, fmt.Errorf("parse %s: %w", displayName(req.Filename), err)
		}
		s.cache.Add(key, res)
		doc := newDocument(info, res)
		s.stats.Record(stats.Sample{Profile: prof.Name, DurationMs: elapsed, Nodes: doc.NodeCount()})
		s.log.Debug("parsed document",
			"profile", prof.Name, "doc_type", docType, "nodes", doc.NodeCount(), "duration_ms", elapsed)
		return s.withChunks(doc, req), nil
	}

	s.log.Debug("parse cache hit", "profile", prof.Name, "content_hash", info.ContentHash)
	return s.withChunks(newDocument(info, res), req), nil
}

func (s *Service) withChunks(doc *Document, req Request) *Document {
	if !req.Chunks {
		return doc
	}
	cfg := req.Chunking
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = s.cfg.DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = s.cfg.DefaultChunkOverlap
	}
	doc.Chunks = chunker.ChunkResult(doc.Result, cfg)
	doc.chunked = true
	return doc
}

func cacheKey(info DocumentInfo, p parser.Profile, src parser.LineSource) string {
	return fmt.Sprintf("%s|%T|%s|%t|%t|%s", info.ContentHash, src, p.Name, p.LooseArticles, p.ReferenceGuard, info.Title)
}

func displayName(filename string) string {
	if filename == "" {
		return "html"
	}
	return filename
}
