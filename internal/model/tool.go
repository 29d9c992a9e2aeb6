package model

const (
	ToolTypeFree   = "free"
	ToolTypePro    = "pro"
	ToolTypeCustom = "custom"
)

// DefaultCategoryName is the synthetic bucket for tools without a category.
const DefaultCategoryName = "General Tools"

// Tool is a catalog entry joined with its category
type Tool struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	Type         string `json:"type"`
	CategoryID   int64  `json:"-"` // 0 when the tool has no category
	CategoryName string `json:"category_name"`
	HasAccess    bool   `json:"has_access"`
}

// Uncategorized reports whether the tool sits in the default bucket.
func (t Tool) Uncategorized() bool {
	return t.CategoryID == 0
}

// PublicTool is the anonymous view of a tool
type PublicTool struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// CategoryGroup is one entry of the public catalog listing
type CategoryGroup struct {
	CategoryName string       `json:"category_name"`
	Tools        []PublicTool `json:"tools"`
}

// Dashboard is the payload of GET /user/dashboard
type Dashboard struct {
	User  DashboardUser `json:"user"`
	Tools []Tool        `json:"tools"`
}
