package empire

import "context"

// Repository provides persistence for empires and the rows that make up their bases.
type Repository interface {
	Create(ctx context.Context, e *Empire) error
	Get(ctx context.Context, id string) (*Empire, error)
	List(ctx context.Context) ([]Empire, error)
	ListIDs(ctx context.Context) ([]string, error)
	IncrementTech(ctx context.Context, empireID, key string) (int, error)

	UpsertLocation(ctx context.Context, loc *Location) error
	GetLocation(ctx context.Context, coord Coordinate) (*Location, error)

	CreateColony(ctx context.Context, c *Colony) error
	GetColony(ctx context.Context, coord Coordinate) (*Colony, error)
	ListColonies(ctx context.Context, empireID string) ([]Colony, error)

	ListBuildings(ctx context.Context, empireID string, coord Coordinate) ([]Building, error)
	ListDefenseKeys(ctx context.Context, empireID string, coord Coordinate, status string) ([]string, error)
}
