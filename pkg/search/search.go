package search

import (
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"wikid/pkg/logger"
	"wikid/pkg/metrics"
	"wikid/pkg/models"
	"wikid/pkg/store"
	"wikid/pkg/wikierr"
)

// MaxResults caps how many hits a single query returns.
const MaxResults = 16

// Result is one search hit, addressed by namespace and slug.
type Result struct {
	Namespace string `json:"namespace"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
}

// pageDoc is the shape indexed per page. Content is searchable but not
// stored; title and slug come back with hits.
type pageDoc struct {
	Namespace string `json:"namespace"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

// Index is an in-memory full-text index over page titles and content.
// It is rebuilt from the page store at startup and kept current by the
// write paths; a crash loses nothing but the index itself.
type Index struct {
	mu  sync.RWMutex
	idx bleve.Index
}

func newMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	kw := bleve.NewKeywordFieldMapping()
	kw.Store = true
	doc.AddFieldMappingsAt("namespace", kw)
	doc.AddFieldMappingsAt("slug", kw)

	title := bleve.NewTextFieldMapping()
	title.Store = true
	doc.AddFieldMappingsAt("title", title)

	content := bleve.NewTextFieldMapping()
	content.Store = false
	doc.AddFieldMappingsAt("content", content)

	m.DefaultMapping = doc
	return m
}

// New creates an empty in-memory index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, wikierr.Io("search_index_create", err)
	}
	return &Index{idx: idx}, nil
}

func docID(namespace, slug string) string { return namespace + "/" + slug }

// Update indexes the current state of a page, replacing any prior entry.
func (s *Index) Update(namespace string, p *models.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.idx.Index(docID(namespace, p.Slug), pageDoc{
		Namespace: namespace,
		Slug:      p.Slug,
		Title:     p.Title,
		Content:   p.Content,
	})
	if err != nil {
		return wikierr.Io("search_index_update", err)
	}
	return nil
}

// Delete removes a page from the index.
func (s *Index) Delete(namespace, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idx.Delete(docID(namespace, slug)); err != nil {
		return wikierr.Io("search_index_delete", err)
	}
	return nil
}

// Build populates the index from every page in the store.
func (s *Index) Build() error {
	count := 0
	err := store.ScanPages(func(namespace string, p *models.Page) error {
		count++
		return s.Update(namespace, p)
	})
	if err != nil {
		return err
	}
	logger.Info("search_index_built", "pages", count)
	return nil
}

// Rebuild replaces the index contents with a fresh scan of the store.
func (s *Index) Rebuild() error {
	fresh, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return wikierr.Io("search_index_create", err)
	}
	count := 0
	err = store.ScanPages(func(namespace string, p *models.Page) error {
		count++
		return fresh.Index(docID(namespace, p.Slug), pageDoc{
			Namespace: namespace,
			Slug:      p.Slug,
			Title:     p.Title,
			Content:   p.Content,
		})
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	old := s.idx
	s.idx = fresh
	s.mu.Unlock()
	_ = old.Close()
	metrics.IndexRebuilds.Inc()
	logger.Info("search_index_rebuilt", "pages", count)
	return nil
}

// Query matches q against titles and content and returns up to MaxResults
// hits. Callers pass the set of namespaces the requesting user may read;
// the restriction is part of the query itself, so hits in readable
// namespaces are never displaced by higher-ranked pages the caller cannot
// see. An empty set yields no results.
func (s *Index) Query(q string, allowed map[string]struct{}) ([]Result, error) {
	if len(allowed) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	title := bleve.NewMatchQuery(q)
	title.SetField("title")
	content := bleve.NewMatchQuery(q)
	content.SetField("content")
	text := bleve.NewDisjunctionQuery(title, content)

	scope := make([]query.Query, 0, len(allowed))
	for ns := range allowed {
		tq := bleve.NewTermQuery(ns)
		tq.SetField("namespace")
		scope = append(scope, tq)
	}

	req := bleve.NewSearchRequestOptions(
		bleve.NewConjunctionQuery(text, bleve.NewDisjunctionQuery(scope...)),
		MaxResults, 0, false)
	req.Fields = []string{"namespace", "slug", "title"}

	res, err := s.idx.Search(req)
	if err != nil {
		return nil, wikierr.Io("search_query", err)
	}
	metrics.Searches.Inc()

	out := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ns, _ := hit.Fields["namespace"].(string)
		slug, _ := hit.Fields["slug"].(string)
		title, _ := hit.Fields["title"].(string)
		out = append(out, Result{Namespace: ns, Slug: slug, Title: title})
	}
	return out, nil
}
