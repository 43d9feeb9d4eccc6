package converter

import (
	"fmt"

	"github.com/cognite/powerops/internal/bootstrap/model"
	"github.com/cognite/powerops/internal/bootstrap/resources"
)

// DefaultPriceSteps are the bid matrix price levels used when a bid process lists none.
var DefaultPriceSteps = []float64{0, 10, 20, 30, 40, 50, 75, 100, 150, 250}

// PriceScenariosToResources converts price scenarios into assets under a common root,
// each related to its price time series.
func PriceScenariosToResources(scenarios []model.PriceScenario) (*resources.Collection, error) {
	col := resources.MustCollection()
	if len(scenarios) == 0 {
		return col, nil
	}
	if err := col.Add(&resources.Asset{ExternalID: PriceScenariosRoot, Name: "Price scenarios"}); err != nil {
		return nil, err
	}
	for _, ps := range scenarios {
		id := PriceScenarioPrefix + ps.Name
		err := col.Add(
			&resources.Asset{
				ExternalID:       id,
				Name:             ps.Name,
				ParentExternalID: PriceScenariosRoot,
				Metadata:         map[string]any{"time_series": ps.TimeSeries},
			},
			resources.NewRelationship(id, resources.EndpointAsset, ps.TimeSeries, resources.EndpointTimeSeries,
				LabelToTimeSeries),
		)
		if err != nil {
			return nil, err
		}
	}
	return col, nil
}

// BidProcessToResources converts a bid process. The snapshot must already hold the
// watercourse and price scenario assets it references.
func BidProcessToResources(bp model.BidProcess, snapshot *resources.Collection) (*resources.Collection, error) {
	wcID := WatercoursePrefix + bp.Watercourse
	if !snapshot.Has(resources.KindAsset, wcID) {
		return nil, fmt.Errorf("bid process %s: watercourse asset %s not found", bp.Name, wcID)
	}

	col := resources.MustCollection()
	id := BidProcessPrefix + bp.Name
	var md map[string]any
	if bp.BidDate != "" {
		md = map[string]any{"bid_date": bp.BidDate}
	}
	items := []resources.Resource{
		&resources.Asset{ExternalID: BidProcessesRoot, Name: "Bid processes"},
		&resources.Asset{ExternalID: id, Name: bp.Name, ParentExternalID: BidProcessesRoot, Metadata: md},
		resources.NewRelationship(id, resources.EndpointAsset, wcID, resources.EndpointAsset, LabelToWatercourse),
	}

	seq, content := bidMatrix(bp)
	items = append(items, seq, content,
		resources.NewRelationship(id, resources.EndpointAsset, seq.ExternalID, resources.EndpointSequence, LabelToSequence),
	)

	for i, name := range bp.PriceScenarios {
		psID := PriceScenarioPrefix + name
		if !snapshot.Has(resources.KindAsset, psID) {
			return nil, fmt.Errorf("bid process %s: price scenario asset %s not found", bp.Name, psID)
		}
		series := snapshot.Assets[psID].Metadata["time_series"]
		transformation := &resources.Transformation{
			ExternalID: fmt.Sprintf("transformation_%s_%s", bp.Name, name),
			Method:     "MultiplyConstant",
			Arguments:  map[string]any{"value": 1.0},
			Order:      i,
		}
		items = append(items,
			resources.NewRelationship(id, resources.EndpointAsset, psID, resources.EndpointAsset, LabelToPriceScenario),
			transformation,
			&resources.Mapping{
				ExternalID:           fmt.Sprintf("mapping_%s_%s_price", bp.Name, name),
				Path:                 fmt.Sprintf("market.%s.sale_price", bp.Watercourse),
				TimeSeriesExternalID: resources.FormatMetadataValue(series),
				Retrieve:             "RESAMPLE",
				Aggregation:          "MEAN",
				Transformations:      []string{transformation.ExternalID},
			},
		)
	}

	if err := col.Add(items...); err != nil {
		return nil, err
	}
	return col, nil
}

// bidMatrix builds the bid matrix sequence of a bid process with one row per price
// step and a NaN volume until the bid is calculated.
func bidMatrix(bp model.BidProcess) (*resources.Sequence, *resources.SequenceContent) {
	steps := bp.PriceSteps
	if len(steps) == 0 {
		steps = DefaultPriceSteps
	}
	seq := &resources.Sequence{
		ExternalID:      "bid_matrix_" + bp.Name,
		Name:            "Bid matrix " + bp.Name,
		AssetExternalID: BidProcessPrefix + bp.Name,
		Metadata:        map[string]any{"price_steps": len(steps)},
		Columns: []resources.SequenceColumn{
			{ExternalID: "price", ValueType: resources.ValueTypeDouble},
			{ExternalID: "volume", ValueType: resources.ValueTypeDouble},
		},
	}
	table := make([][]any, 0, len(steps))
	for _, p := range steps {
		table = append(table, []any{p, nil})
	}
	return seq, resources.NewSequenceContentFromTable(seq.ExternalID, seq.ColumnIDs(), table)
}

// RKOMToResources converts a reserve-capacity process. It relates the process to every
// plant of its watercourse found in the snapshot.
func RKOMToResources(r model.RKOMProcess, snapshot *resources.Collection) (*resources.Collection, error) {
	wcID := WatercoursePrefix + r.Watercourse
	if !snapshot.Has(resources.KindAsset, wcID) {
		return nil, fmt.Errorf("rkom process %s: watercourse asset %s not found", r.Name, wcID)
	}

	col := resources.MustCollection()
	id := RKOMPrefix + r.Name
	var md map[string]any
	if r.Auction != "" {
		md = map[string]any{"auction": r.Auction}
	}
	items := []resources.Resource{
		&resources.Asset{ExternalID: RKOMRoot, Name: "RKOM processes"},
		&resources.Asset{ExternalID: id, Name: r.Name, ParentExternalID: RKOMRoot, Metadata: md},
		resources.NewRelationship(id, resources.EndpointAsset, wcID, resources.EndpointAsset, LabelToWatercourse),
	}

	for _, a := range resources.Values(snapshot.Assets) {
		if a.ParentExternalID != wcID {
			continue
		}
		items = append(items,
			resources.NewRelationship(id, resources.EndpointAsset, a.ExternalID, resources.EndpointAsset, LabelToPlant),
			&resources.Mapping{
				ExternalID: fmt.Sprintf("mapping_%s_%s_reserve", r.Name, a.Name),
				Path:       fmt.Sprintf("plant.%s.reserve_capacity", a.Name),
				Retrieve:   "NONE",
			},
		)
	}
	for _, name := range r.PriceScenarios {
		psID := PriceScenarioPrefix + name
		if !snapshot.Has(resources.KindAsset, psID) {
			return nil, fmt.Errorf("rkom process %s: price scenario asset %s not found", r.Name, psID)
		}
		items = append(items,
			resources.NewRelationship(id, resources.EndpointAsset, psID, resources.EndpointAsset, LabelToPriceScenario))
	}

	if err := col.Add(items...); err != nil {
		return nil, err
	}
	return col, nil
}
