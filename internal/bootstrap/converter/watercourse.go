package converter

import (
	"fmt"

	"github.com/cognite/powerops/internal/bootstrap/model"
	"github.com/cognite/powerops/internal/bootstrap/resources"
)

// External id prefixes of the assets the converters produce.
const (
	WatercoursePrefix   = "watercourse_"
	PlantPrefix         = "plant_"
	GeneratorPrefix     = "generator_"
	PriceScenarioPrefix = "price_scenario_"
	BidProcessPrefix    = "bid_process_"
	RKOMPrefix          = "rkom_"
)

// Root assets that group non-watercourse assets.
const (
	PriceScenariosRoot = "price_scenarios"
	BidProcessesRoot   = "bid_processes"
	RKOMRoot           = "rkom_processes"
)

// WatercourseToResources converts a watercourse with its plants, generators and SHOP
// files. Shop files are returned pending; Build hashes them.
func WatercourseToResources(wc model.Watercourse) (*resources.Collection, error) {
	col := resources.MustCollection()
	wcID := WatercoursePrefix + wc.Name

	var md map[string]any
	if wc.ShopVersion != "" {
		md = map[string]any{"shop_version": wc.ShopVersion}
	}
	var items []resources.Resource
	add := func(rs ...resources.Resource) {
		items = append(items, rs...)
	}
	add(&resources.Asset{ExternalID: wcID, Name: wc.Name, Metadata: md})

	var baseMappings []string
	for _, p := range wc.Plants {
		plantID := PlantPrefix + p.Name
		add(
			&resources.Asset{ExternalID: plantID, Name: p.Name, ParentExternalID: wcID},
			resources.NewRelationship(wcID, resources.EndpointAsset, plantID, resources.EndpointAsset, LabelToPlant),
		)

		if p.InflowTimeSeries != "" {
			mapping := &resources.Mapping{
				ExternalID:           fmt.Sprintf("mapping_%s_%s_inflow", wc.Name, p.Name),
				Path:                 fmt.Sprintf("plant.%s.inflow", p.Name),
				TimeSeriesExternalID: p.InflowTimeSeries,
				Retrieve:             "RESAMPLE",
				Aggregation:          "MEAN",
			}
			add(
				mapping,
				resources.NewRelationship(plantID, resources.EndpointAsset,
					p.InflowTimeSeries, resources.EndpointTimeSeries, LabelToTimeSeries),
			)
			baseMappings = append(baseMappings, mapping.ExternalID)
		}

		for _, g := range p.Generators {
			genID := GeneratorPrefix + g.Name
			gmd := map[string]any{"p_min": g.PMin}
			if g.PMax != 0 {
				gmd["p_max"] = g.PMax
			}
			if g.PenaltyLimit != 0 {
				gmd["penalty_limit"] = g.PenaltyLimit
			}
			if g.StartCost != 0 {
				gmd["start_cost"] = g.StartCost
			}
			add(
				&resources.Asset{ExternalID: genID, Name: g.Name, ParentExternalID: plantID, Metadata: gmd},
				resources.NewRelationship(plantID, resources.EndpointAsset, genID, resources.EndpointAsset, LabelToGenerator),
			)
		}
	}

	var modelFile string
	for _, file := range wc.ShopFiles {
		sf := resources.NewPendingShopFile(wc.Name, file.Path, file.Kind)
		add(sf, &resources.FileRef{
			ExternalID:     "fileref_" + sf.GetExternalID(),
			Type:           string(file.Kind),
			FileExternalID: sf.GetExternalID(),
		})
		if file.Kind == resources.ShopFileModel {
			modelFile = sf.GetExternalID()
		}
	}

	if modelFile != "" {
		add(&resources.ModelTemplate{
			ExternalID:      "model_template_" + wc.Name,
			TemplateVersion: "1",
			ShopVersion:     wc.ShopVersion,
			Watercourse:     wc.Name,
			Model:           modelFile,
			BaseMappings:    baseMappings,
		})
	}

	if err := col.Add(items...); err != nil {
		return nil, err
	}
	return col, nil
}
