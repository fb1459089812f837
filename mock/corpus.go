package mock

import (
	"context"

	"github.com/mvil/nox"
)

var _ nox.CorpusService = (*CorpusService)(nil)

// CorpusService is a mock implementation of nox.CorpusService.
type CorpusService struct {
	LoadAllFn func(ctx context.Context) error
	TabsFn    func() []nox.TabState
	TabFn     func(id string) (nox.TabState, error)
	QueryFn   func(tabID, text string) ([]nox.Match, error)
	LoadFn    func(ctx context.Context, id string) (nox.TabState, error)
	RefreshFn func(ctx context.Context, id string) (nox.TabState, error)
}

func (s *CorpusService) LoadAll(ctx context.Context) error {
	return s.LoadAllFn(ctx)
}

func (s *CorpusService) Tabs() []nox.TabState {
	return s.TabsFn()
}

func (s *CorpusService) Tab(id string) (nox.TabState, error) {
	return s.TabFn(id)
}

func (s *CorpusService) Query(tabID, text string) ([]nox.Match, error) {
	return s.QueryFn(tabID, text)
}

func (s *CorpusService) Load(ctx context.Context, id string) (nox.TabState, error) {
	return s.LoadFn(ctx, id)
}

func (s *CorpusService) Refresh(ctx context.Context, id string) (nox.TabState, error) {
	return s.RefreshFn(ctx, id)
}
