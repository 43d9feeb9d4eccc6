package converter

import "github.com/cognite/powerops/internal/bootstrap/resources"

// Relationship labels. Every relationship the converters emit carries one.
const (
	LabelToPlant         = "relationship_to.plant"
	LabelToGenerator     = "relationship_to.generator"
	LabelToWatercourse   = "relationship_to.watercourse"
	LabelToPriceScenario = "relationship_to.price_scenario"
	LabelToTimeSeries    = "relationship_to.time_series"
	LabelToSequence      = "relationship_to.sequence"
)

var labelNames = map[string]string{
	LabelToPlant:         "Relationship to plant",
	LabelToGenerator:     "Relationship to generator",
	LabelToWatercourse:   "Relationship to watercourse",
	LabelToPriceScenario: "Relationship to price scenario",
	LabelToTimeSeries:    "Relationship to time series",
	LabelToSequence:      "Relationship to sequence",
}

// LabelsToResources returns the label definitions referenced by the other converters.
func LabelsToResources() (*resources.Collection, error) {
	items := make([]resources.Resource, 0, len(labelNames))
	for xid, name := range labelNames {
		items = append(items, &resources.LabelDefinition{ExternalID: xid, Name: name})
	}
	return resources.NewCollection(items...)
}
