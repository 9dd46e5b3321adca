package primary

import "context"

// CategoryService defines the primary port for category registration.
type CategoryService interface {
	// RegisterCategory registers an existing platform category.
	RegisterCategory(ctx context.Context, req RegisterCategoryRequest) (*Category, error)

	// SetArchiveCategory marks a platform category as the archive.
	SetArchiveCategory(ctx context.Context, categoryID int64) (*Category, error)

	// ListCategories lists registered categories, optionally of one kind.
	ListCategories(ctx context.Context, kind string) ([]*Category, error)

	// Setup creates or adopts the intake category, the archive category and
	// the archive log channel, and registers them. Running it again creates
	// nothing.
	Setup(ctx context.Context, req SetupRequest) (*SetupReport, error)
}

// SetupRequest names the layout Setup ensures.
type SetupRequest struct {
	IntakeName     string
	ArchiveName    string
	LogChannelName string
}

// SetupReport describes what Setup found or created.
type SetupReport struct {
	IntakeCategoryID  int64
	ArchiveCategoryID int64
	LogChannelID      int64
	Created           []string // names of objects created on the platform
}

// RegisterCategoryRequest contains parameters for registering a category.
type RegisterCategoryRequest struct {
	CategoryID int64
	RoleID     int64
	Kind       string // intake or custom
}

// Category represents a category at the port boundary.
type Category struct {
	CategoryID int64
	Name       string
	RoleID     int64
	Kind       string
}
