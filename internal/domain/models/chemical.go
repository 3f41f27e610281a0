package models

// ContainerUnit enumerates the volume/mass units a chemical container can be sold in.
type ContainerUnit string

const (
	UnitLitre      ContainerUnit = "L"
	UnitMillilitre ContainerUnit = "mL"
	UnitKilogram   ContainerUnit = "kg"
	UnitGram       ContainerUnit = "g"
)

// Chemical captures a stocked herbicide product. Name is the stable key.
type Chemical struct {
	Name             string        `json:"name" bson:"name"`
	ActiveIngredient string        `json:"activeIngredient" bson:"active_ingredient"`
	ContainerSize    float64       `json:"containerSize" bson:"container_size"`
	ContainerUnit    ContainerUnit `json:"containerUnit" bson:"container_unit"`
	ContainerCount   int           `json:"containerCount" bson:"container_count"`
	ReorderThreshold int           `json:"reorderThreshold" bson:"reorder_threshold"`
}

// LowStock reports whether the chemical should be flagged for reordering.
// A zero threshold disables the check.
func (c Chemical) LowStock() bool {
	return c.ReorderThreshold > 0 && c.ContainerCount < c.ReorderThreshold
}
