// Package converter turns the domain configuration into a resource collection.
package converter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cognite/powerops/internal/bootstrap/hash"
	"github.com/cognite/powerops/internal/bootstrap/model"
	"github.com/cognite/powerops/internal/bootstrap/resources"
)

// Options configures Build.
type Options struct {
	// Hasher computes the content hash of a shop file. Defaults to hash.FileHash.
	Hasher func(path string) (string, error)
	Logger *slog.Logger
}

// Build converts cfg into one collection. Partial collections are combined in the
// order labels, price scenarios, watercourses, bid processes, RKOM; on an external id
// produced twice the later one wins. Shop files are hashed before returning.
func Build(cfg *model.Config, opts Options) (*resources.Collection, error) {
	if opts.Hasher == nil {
		opts.Hasher = hash.FileHash
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	col, err := LabelsToResources()
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	combine := func(step string, part *resources.Collection) {
		if collisions := col.Collisions(part); len(collisions) > 0 {
			logger.Debug("Converter output overrides existing resources",
				slog.String("step", step),
				slog.String("external_ids", strings.Join(collisions, ",")),
			)
		}
		col = col.Combine(part)
	}

	prices, err := PriceScenariosToResources(cfg.PriceScenarios)
	if err != nil {
		return nil, fmt.Errorf("price scenarios: %w", err)
	}
	combine("price_scenarios", prices)

	for _, wc := range cfg.Watercourses {
		part, err := WatercourseToResources(wc)
		if err != nil {
			return nil, fmt.Errorf("watercourse %s: %w", wc.Name, err)
		}
		combine("watercourse "+wc.Name, part)
	}

	for _, bp := range cfg.BidProcesses {
		part, err := BidProcessToResources(bp, col.Copy())
		if err != nil {
			return nil, err
		}
		combine("bid process "+bp.Name, part)
	}

	for _, r := range cfg.RKOM {
		part, err := RKOMToResources(r, col.Copy())
		if err != nil {
			return nil, err
		}
		combine("rkom "+r.Name, part)
	}

	if err := col.FinalizeShopFiles(opts.Hasher); err != nil {
		return nil, err
	}

	logger.Debug("Built resource collection", slog.Int("resources", col.Size()))
	return col, nil
}

// BootstrapFinishedEvent returns the event that marks a completed bootstrap run.
func BootstrapFinishedEvent(dataSet string, now time.Time) *resources.Event {
	ts := now.UnixMilli()
	return &resources.Event{
		ExternalID:  fmt.Sprintf("powerops_bootstrap_finished_%s", uuid.NewString()),
		Type:        resources.BootstrapFinishedEventType,
		Subtype:     dataSet,
		Description: "Bootstrap finished",
		StartTime:   ts,
		EndTime:     ts,
		Source:      "powerops",
	}
}
