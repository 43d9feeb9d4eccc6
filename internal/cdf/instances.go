package cdf

import (
	"encoding/json"
	"fmt"

	"github.com/cognite/powerops/internal/bootstrap/resources"
)

var instanceTypes = map[resources.Kind]string{
	resources.KindModelTemplate:  InstanceTypeModelTemplate,
	resources.KindMapping:        InstanceTypeMapping,
	resources.KindTransformation: InstanceTypeTransformation,
	resources.KindFileRef:        InstanceTypeFileRef,
}

// InstanceType returns the data-model type a kind is stored as.
func InstanceType(kind resources.Kind) (string, bool) {
	t, ok := instanceTypes[kind]
	return t, ok
}

// NewInstanceApply converts a data-model record into its instance write form.
// Every JSON field except the external id becomes a property.
func NewInstanceApply(space string, r resources.Resource) (InstanceApply, error) {
	typ, ok := InstanceType(r.GetKind())
	if !ok {
		return InstanceApply{}, fmt.Errorf("%w: %s is not a data-model kind", resources.ErrUnknownKind, r.GetKind())
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return InstanceApply{}, fmt.Errorf("failed to marshal %s %s: %w", r.GetKind(), r.GetExternalID(), err)
	}
	var props map[string]any
	if err := json.Unmarshal(raw, &props); err != nil {
		return InstanceApply{}, fmt.Errorf("failed to unmarshal %s %s: %w", r.GetKind(), r.GetExternalID(), err)
	}
	delete(props, "externalId")

	return InstanceApply{
		Space:      space,
		ExternalID: r.GetExternalID(),
		Type:       typ,
		Properties: props,
	}, nil
}
