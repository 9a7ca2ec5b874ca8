package repository

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/asteroid-belt/pantry/internal/paging"
)

// Loader loads one page. *paging.Engine implements it.
type Loader interface {
	Load(ctx context.Context, req paging.Request) (paging.Page, error)
}

// Stream is one independently paginated feed. Loads on a stream are
// serialized; different streams may load concurrently.
type Stream struct {
	loader      Loader
	loadType    paging.LoadType
	pageSize    int
	initialSize int
	refresher   Refresher
	onResult    func(paging.LoadType, error)

	mu      sync.Mutex
	loading atomic.Bool
	loaded  bool
	last    paging.Request
	page    paging.Page
	err     error
}

func newStream(loader Loader, lt paging.LoadType, opts Options, onResult func(paging.LoadType, error)) *Stream {
	pageSize, initialSize := opts.PageSize, opts.InitialLoadSize
	// The first page may only be larger when it stays aligned to page boundaries.
	if initialSize <= pageSize || initialSize%pageSize != 0 {
		initialSize = pageSize
	}
	return &Stream{
		loader:      loader,
		loadType:    lt,
		pageSize:    pageSize,
		initialSize: initialSize,
		refresher:   opts.Connectivity,
		onResult:    onResult,
	}
}

// LoadType returns the feed this stream pages through.
func (s *Stream) LoadType() paging.LoadType { return s.loadType }

// First loads the head of the feed using the initial load size.
func (s *Stream) First(ctx context.Context) (paging.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, paging.Request{Type: s.loadType, Index: 0, Size: s.initialSize})
}

// Load loads the page at index, counted in page-size units. Index 0 is the
// enlarged first page, so indexes 1 up to InitialLoadSize/PageSize-1 overlap
// it; walk with NextPage or follow Page.Next to avoid repeats.
func (s *Stream) Load(ctx context.Context, index int) (paging.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index == 0 {
		return s.load(ctx, paging.Request{Type: s.loadType, Index: 0, Size: s.initialSize})
	}
	return s.load(ctx, paging.Request{Type: s.loadType, Index: index, Size: s.pageSize})
}

// NextPage loads the page after the current one, or the first page if
// nothing has been loaded yet.
func (s *Stream) NextPage(ctx context.Context) (paging.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return s.load(ctx, paging.Request{Type: s.loadType, Index: 0, Size: s.initialSize})
	}
	if s.page.Next == nil {
		return paging.Page{}, ErrNoMorePages
	}
	return s.load(ctx, paging.Request{Type: s.loadType, Index: *s.page.Next, Size: s.pageSize})
}

// PrevPage loads the page before the current one.
func (s *Stream) PrevPage(ctx context.Context) (paging.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || s.page.Prev == nil {
		return paging.Page{}, ErrNoPreviousPage
	}
	prev := *s.page.Prev
	size := s.pageSize
	if prev == 0 {
		size = s.initialSize
	}
	return s.load(ctx, paging.Request{Type: s.loadType, Index: prev, Size: size})
}

// Retry re-checks connectivity, then repeats the last request or loads
// the first page.
func (s *Stream) Retry(ctx context.Context) (paging.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refresher != nil {
		s.refresher.Refresh(ctx)
	}
	if s.last.Size == 0 {
		return s.load(ctx, paging.Request{Type: s.loadType, Index: 0, Size: s.initialSize})
	}
	return s.load(ctx, s.last)
}

// Err returns the error of the most recent load, or nil.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Current returns the most recently loaded page.
func (s *Stream) Current() (paging.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page, s.loaded
}

// Loading reports whether a load is in flight.
func (s *Stream) Loading() bool {
	return s.loading.Load()
}

// load runs req. Must be called with s.mu held.
func (s *Stream) load(ctx context.Context, req paging.Request) (paging.Page, error) {
	s.loading.Store(true)
	defer s.loading.Store(false)

	s.last = req
	page, err := s.loader.Load(ctx, req)
	s.err = err
	if s.onResult != nil {
		s.onResult(s.loadType, err)
	}
	if err != nil {
		// A transport failure may mean the network is gone; re-check so the
		// next load can be served from the cache.
		if s.refresher != nil && paging.KindOf(err) == paging.KindTransport {
			s.refresher.Refresh(ctx)
		}
		return paging.Page{}, err
	}

	// An enlarged first page covers several regular pages.
	if req.Index == 0 && req.Size != s.pageSize && page.Next != nil {
		next := req.Size / s.pageSize
		page.Next = &next
	}

	s.page = page
	s.loaded = true
	return page, nil
}
