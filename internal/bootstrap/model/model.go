// Package model holds the domain configuration a bootstrap run is built from.
package model

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/cognite/powerops/internal/bootstrap/resources"
)

// Config is the root of a bootstrap configuration file.
type Config struct {
	// DataSet is the external id of the data set to write to. The --data-set flag
	// takes precedence.
	DataSet        string          `json:"data_set,omitempty"`
	Watercourses   []Watercourse   `json:"watercourses,omitempty"`
	PriceScenarios []PriceScenario `json:"price_scenarios,omitempty"`
	BidProcesses   []BidProcess    `json:"bid_processes,omitempty"`
	RKOM           []RKOMProcess   `json:"rkom,omitempty"`
}

// Watercourse is a river system with its plants and SHOP input files.
type Watercourse struct {
	Name        string         `json:"name"`
	ShopVersion string         `json:"shop_version,omitempty"`
	Plants      []Plant        `json:"plants,omitempty"`
	ShopFiles   []ShopFileSpec `json:"shop_files,omitempty"`
}

// Plant is a hydropower plant.
type Plant struct {
	Name string `json:"name"`
	// InflowTimeSeries is the external id of the time series feeding the plant's inflow.
	InflowTimeSeries string      `json:"inflow_time_series,omitempty"`
	Generators       []Generator `json:"generators,omitempty"`
}

// Generator is a unit within a plant.
type Generator struct {
	Name         string  `json:"name"`
	PMin         float64 `json:"p_min"`
	PMax         float64 `json:"p_max,omitempty"`
	PenaltyLimit int     `json:"penalty_limit,omitempty"`
	StartCost    float64 `json:"start_cost,omitempty"`
}

// ShopFileSpec points at a SHOP input file on disk.
type ShopFileSpec struct {
	Path string                 `json:"path"`
	Kind resources.ShopFileKind `json:"kind"`
}

// PriceScenario is a named price forecast.
type PriceScenario struct {
	Name       string `json:"name"`
	TimeSeries string `json:"time_series"`
}

// BidProcess configures a day-ahead bid calculation for one watercourse.
type BidProcess struct {
	Name           string    `json:"name"`
	Watercourse    string    `json:"watercourse"`
	PriceScenarios []string  `json:"price_scenarios"`
	BidDate        string    `json:"bid_date,omitempty"`
	PriceSteps     []float64 `json:"price_steps,omitempty"`
}

// RKOMProcess configures a reserve-capacity market bid for one watercourse.
type RKOMProcess struct {
	Name           string   `json:"name"`
	Watercourse    string   `json:"watercourse"`
	Auction        string   `json:"auction,omitempty"`
	PriceScenarios []string `json:"price_scenarios,omitempty"`
}

var shopFileKinds = map[resources.ShopFileKind]bool{
	resources.ShopFileModel:    true,
	resources.ShopFileCut:      true,
	resources.ShopFileCommands: true,
	resources.ShopFileCase:     true,
	resources.ShopFileExtra:    true,
}

// Validate checks names and cross references. Every problem found is reported.
func (c *Config) Validate() error {
	var errs *multierror.Error

	watercourses := map[string]bool{}
	plants := map[string]bool{}
	generators := map[string]bool{}
	for _, wc := range c.Watercourses {
		if wc.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("watercourse without name"))
			continue
		}
		if watercourses[wc.Name] {
			errs = multierror.Append(errs, fmt.Errorf("duplicate watercourse %q", wc.Name))
		}
		watercourses[wc.Name] = true

		models := 0
		for _, sf := range wc.ShopFiles {
			if sf.Path == "" {
				errs = multierror.Append(errs, fmt.Errorf("watercourse %q: shop file without path", wc.Name))
			}
			if !shopFileKinds[sf.Kind] {
				errs = multierror.Append(errs, fmt.Errorf("watercourse %q: unknown shop file kind %q", wc.Name, sf.Kind))
			}
			if sf.Kind == resources.ShopFileModel {
				models++
			}
		}
		if models > 1 {
			errs = multierror.Append(errs, fmt.Errorf("watercourse %q: more than one model file", wc.Name))
		}

		for _, p := range wc.Plants {
			if p.Name == "" || plants[p.Name] {
				errs = multierror.Append(errs, fmt.Errorf("watercourse %q: missing or duplicate plant name %q", wc.Name, p.Name))
			}
			plants[p.Name] = true
			for _, g := range p.Generators {
				if g.Name == "" || generators[g.Name] {
					errs = multierror.Append(errs, fmt.Errorf("plant %q: missing or duplicate generator name %q", p.Name, g.Name))
				}
				generators[g.Name] = true
				if g.PMax != 0 && g.PMax < g.PMin {
					errs = multierror.Append(errs, fmt.Errorf("generator %q: p_max %v is below p_min %v", g.Name, g.PMax, g.PMin))
				}
			}
		}
	}

	scenarios := map[string]bool{}
	for _, ps := range c.PriceScenarios {
		if ps.Name == "" || scenarios[ps.Name] {
			errs = multierror.Append(errs, fmt.Errorf("missing or duplicate price scenario name %q", ps.Name))
		}
		scenarios[ps.Name] = true
		if ps.TimeSeries == "" {
			errs = multierror.Append(errs, fmt.Errorf("price scenario %q: missing time_series", ps.Name))
		}
	}

	checkRefs := func(owner, watercourse string, priceScenarios []string) {
		if !watercourses[watercourse] {
			errs = multierror.Append(errs, fmt.Errorf("%s: unknown watercourse %q", owner, watercourse))
		}
		for _, name := range priceScenarios {
			if !scenarios[name] {
				errs = multierror.Append(errs, fmt.Errorf("%s: unknown price scenario %q", owner, name))
			}
		}
	}
	for _, bp := range c.BidProcesses {
		if bp.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("bid process without name"))
		}
		checkRefs(fmt.Sprintf("bid process %q", bp.Name), bp.Watercourse, bp.PriceScenarios)
	}
	for _, r := range c.RKOM {
		if r.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("rkom process without name"))
		}
		checkRefs(fmt.Sprintf("rkom process %q", r.Name), r.Watercourse, r.PriceScenarios)
	}

	return errs.ErrorOrNil()
}

// Merge appends the entries of other. A non-empty data set in other wins.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.DataSet != "" {
		c.DataSet = other.DataSet
	}
	c.Watercourses = append(c.Watercourses, other.Watercourses...)
	c.PriceScenarios = append(c.PriceScenarios, other.PriceScenarios...)
	c.BidProcesses = append(c.BidProcesses, other.BidProcesses...)
	c.RKOM = append(c.RKOM, other.RKOM...)
}
