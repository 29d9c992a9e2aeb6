package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"toolhub/internal/model"
	"toolhub/internal/repository"
)

// CatalogService builds the tool listings.
//
// Access policy: every authenticated caller sees every free and pro tool,
// whatever their role. The role travels with the dashboard so clients can
// decide what to show (an admin link, for example); it is never used to filter
// tools. Pro tools are listed exactly like free ones. Custom tools are never listed.
type CatalogService interface {
	Dashboard(ctx context.Context, caller model.SessionUser) (*model.Dashboard, error)
	PublicCatalog(ctx context.Context) ([]model.CategoryGroup, error)
}

type catalogService struct {
	toolRepo repository.ToolRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(toolRepo repository.ToolRepository) CatalogService {
	return &catalogService{toolRepo: toolRepo}
}

// Dashboard lists the tools for an authenticated caller. The caller identity
// comes from the verified token only; the user store is not consulted.
func (s *catalogService) Dashboard(ctx context.Context, caller model.SessionUser) (*model.Dashboard, error) {
	tools, err := s.listed(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tools {
		tools[i].HasAccess = true
	}
	return &model.Dashboard{
		User: model.DashboardUser{
			Email:     caller.Email,
			Role:      caller.Role,
			FirstName: caller.Name,
		},
		Tools: tools,
	}, nil
}

// PublicCatalog lists the same tools as the dashboard grouped by category.
func (s *catalogService) PublicCatalog(ctx context.Context) ([]model.CategoryGroup, error) {
	tools, err := s.listed(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByCategory(tools), nil
}

func (s *catalogService) listed(ctx context.Context) ([]model.Tool, error) {
	tools, err := s.toolRepo.ListVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	visible := slices.DeleteFunc(tools, func(t model.Tool) bool {
		return !IsListedType(t.Type)
	})
	for i := range visible {
		if visible[i].Uncategorized() {
			visible[i].CategoryName = model.DefaultCategoryName
		}
	}
	slices.SortStableFunc(visible, compareTools)
	if visible == nil {
		visible = []model.Tool{}
	}
	return visible, nil
}

// IsListedType reports whether tools of the given type are shown to end users.
func IsListedType(toolType string) bool {
	return toolType == model.ToolTypeFree || toolType == model.ToolTypePro
}

// real categories by id, then the default bucket, then by tool name
func compareTools(a, b model.Tool) int {
	if a.Uncategorized() != b.Uncategorized() {
		if a.Uncategorized() {
			return 1
		}
		return -1
	}
	if c := cmp.Compare(a.CategoryID, b.CategoryID); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// GroupByCategory groups ordered tools by category, keeping first-seen order.
func GroupByCategory(tools []model.Tool) []model.CategoryGroup {
	groups := []model.CategoryGroup{}
	index := make(map[int64]int)
	for _, t := range tools {
		i, ok := index[t.CategoryID]
		if !ok {
			i = len(groups)
			index[t.CategoryID] = i
			groups = append(groups, model.CategoryGroup{CategoryName: t.CategoryName, Tools: []model.PublicTool{}})
		}
		groups[i].Tools = append(groups[i].Tools, model.PublicTool{
			Name:        t.Name,
			URL:         t.URL,
			Type:        t.Type,
			Description: t.Description,
		})
	}
	return groups
}
