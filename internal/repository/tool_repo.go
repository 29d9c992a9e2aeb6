package repository

import (
	"context"
	"fmt"

	"toolhub/internal/model"
)

// ToolRepository reads the tool catalog. It never writes.
type ToolRepository interface {
	ListVisible(ctx context.Context) ([]model.Tool, error)
}

type toolRepository struct {
	db DB
}

// NewToolRepository creates a new ToolRepository
func NewToolRepository(db DB) ToolRepository {
	return &toolRepository{db: db}
}

// ListVisible returns every free and pro tool with its category.
// Tools without a category get category id 0 and the default category name,
// and are ordered after all real categories; within a category tools are ordered by name.
func (r *toolRepository) ListVisible(ctx context.Context) ([]model.Tool, error) {
	sql := `SELECT t.id, t.name, COALESCE(t.description, ''), t.url, t.type,
                   COALESCE(tc.id, 0), COALESCE(tc.name, $3)
            FROM tools t
            LEFT JOIN tool_categories tc ON t.category_id = tc.id
            WHERE t.type IN ($1, $2)
            ORDER BY (tc.id IS NULL), tc.id, t.name`

	rows, err := r.db.Query(ctx, sql, model.ToolTypeFree, model.ToolTypePro, model.DefaultCategoryName)
	if err != nil {
		return nil, fmt.Errorf("failed to query tools: %w", err)
	}
	defer rows.Close()

	tools := []model.Tool{}
	for rows.Next() {
		var t model.Tool
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.URL, &t.Type, &t.CategoryID, &t.CategoryName); err != nil {
			return nil, fmt.Errorf("failed to scan tool row: %w", err)
		}
		tools = append(tools, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tool rows: %w", err)
	}
	return tools, nil
}
