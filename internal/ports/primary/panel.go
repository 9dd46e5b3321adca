package primary

import "context"

// PanelService defines the primary port for intake panels.
type PanelService interface {
	// CreatePanel registers an intake category and posts its panel.
	CreatePanel(ctx context.Context, req CreatePanelRequest) (*Panel, error)

	// ListPanels lists panels.
	ListPanels(ctx context.Context) ([]*Panel, error)

	// ResolveButton maps a button custom id to its intake panel.
	ResolveButton(ctx context.Context, customID string) (*Panel, error)
}

// CreatePanelRequest contains parameters for creating a panel.
type CreatePanelRequest struct {
	ChannelID   int64 // where the panel message is posted
	CategoryID  int64 // intake category new cases spawn in
	Title       string
	Description string
	Emoji       string
	ButtonText  string
	RoleID      int64
}

// Panel represents an intake panel at the port boundary.
type Panel struct {
	ID          int64
	CategoryID  int64
	ChannelID   int64
	MessageID   int64
	Title       string
	Description string
	Emoji       string
	ButtonText  string
	RoleID      int64
	ButtonID    string
}
