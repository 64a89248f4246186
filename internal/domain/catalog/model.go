package catalog

// Category groups catalog entries by the queue (or construction flow) that produces them.
type Category string

const (
	CategoryBuilding   Category = "building"
	CategoryTechnology Category = "technology"
	CategoryUnit       Category = "unit"
	CategoryDefense    Category = "defense"
)

// Queued reports whether items of the category go through a production queue.
func (c Category) Queued() bool {
	switch c {
	case CategoryTechnology, CategoryUnit, CategoryDefense:
		return true
	default:
		return false
	}
}

// CapacityKind names the capacity rate used to time an item.
type CapacityKind string

const (
	KindConstruction CapacityKind = "construction"
	KindProduction   CapacityKind = "production"
	KindResearch     CapacityKind = "research"
	KindCitizen      CapacityKind = "citizen"
	KindEconomy      CapacityKind = "economy"
)

// Requirement is a prerequisite on a tech level or a building level at the base.
type Requirement struct {
	Key   string `json:"key"`
	Level int    `json:"required_level"`
}

// Item is one static catalog entry.
type Item struct {
	Key         string        `json:"key"`
	Name        string        `json:"name"`
	Category    Category      `json:"category"`
	Cost        int64         `json:"credits_cost"`
	Techs       []Requirement `json:"tech_requirements,omitempty"`
	Building    *Requirement  `json:"building_requirement,omitempty"`
	EnergyDelta int64         `json:"energy_delta,omitempty"`
	Capacity    CapacityKind  `json:"capacity"`
}
