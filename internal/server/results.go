package server

import (
	"sync"

	"github.com/ironsheep/pepper-quality-mcp/internal/pipeline"
)

// resultCache keeps the latest analysis per image path so annotate and crop
// calls reuse it.
type resultCache struct {
	mu      sync.RWMutex
	results map[string]*pipeline.AnalysisResult
}

func newResultCache() *resultCache {
	return &resultCache{results: make(map[string]*pipeline.AnalysisResult)}
}

func (c *resultCache) get(path string) (*pipeline.AnalysisResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[path]
	return r, ok
}

func (c *resultCache) put(path string, r *pipeline.AnalysisResult) {
	c.mu.Lock()
	c.results[path] = r
	c.mu.Unlock()
}

func (c *resultCache) evict(path string) {
	c.mu.Lock()
	delete(c.results, path)
	c.mu.Unlock()
}
