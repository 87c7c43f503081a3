package catalog

import (
	"fmt"
	"time"
)

func (s *Service) getListCache(status string, limit int) (ListResult, bool) {
	key := cacheKey(status, limit)
	s.cacheMu.RLock()
	item, ok := s.listCache[key]
	s.cacheMu.RUnlock()
	if !ok || time.Now().After(item.Expires) {
		return ListResult{}, false
	}
	return item.Result, true
}

// cacheGeneration is read before a store query. setListCache drops the
// result if an Invalidate ran in between.
func (s *Service) cacheGeneration() uint64 {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cacheGen
}

func (s *Service) setListCache(status string, limit int, gen uint64, value ListResult) {
	if s.cacheTTL <= 0 {
		return
	}
	key := cacheKey(status, limit)
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if gen != s.cacheGen {
		return
	}
	s.listCache[key] = cacheItem{Result: value, Expires: time.Now().Add(s.cacheTTL)}
}

// Invalidate drops every cached list page.
func (s *Service) Invalidate() {
	s.cacheMu.Lock()
	s.cacheGen++
	clear(s.listCache)
	s.cacheMu.Unlock()
}

func cacheKey(status string, limit int) string {
	return fmt.Sprintf("%s|%d", status, limit)
}
