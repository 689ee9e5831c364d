package mock

import (
	"context"

	"github.com/fwojciec/docsel"
)

var _ docsel.EditService = (*EditService)(nil)

// EditService is a mock implementation of docsel.EditService.
type EditService struct {
	CreateEditFn func(ctx context.Context, edit *docsel.Edit) error
	FindEditsFn  func(ctx context.Context, filter docsel.EditFilter) ([]*docsel.Edit, error)
}

func (s *EditService) CreateEdit(ctx context.Context, edit *docsel.Edit) error {
	return s.CreateEditFn(ctx, edit)
}

func (s *EditService) FindEdits(ctx context.Context, filter docsel.EditFilter) ([]*docsel.Edit, error) {
	return s.FindEditsFn(ctx, filter)
}
