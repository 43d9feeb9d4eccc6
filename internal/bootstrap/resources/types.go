package resources

import "errors"

// Kind identifies one of the record shapes a Collection tracks. The string value
// is used as the section name in diff reports.
type Kind string

const (
	KindAsset           Kind = "assets"
	KindRelationship    Kind = "relationships"
	KindSequence        Kind = "sequences"
	KindLabel           Kind = "labels"
	KindEvent           Kind = "events"
	KindSequenceContent Kind = "sequence_content"
	KindShopFile        Kind = "shop_files"
	KindModelTemplate   Kind = "model_templates"
	KindMapping         Kind = "mappings"
	KindTransformation  Kind = "transformations"
	KindFileRef         Kind = "file_refs"
)

// AllKinds lists every kind in a stable order. Reports and dumps iterate in this order.
var AllKinds = []Kind{
	KindAsset,
	KindRelationship,
	KindSequence,
	KindLabel,
	KindEvent,
	KindSequenceContent,
	KindShopFile,
	KindModelTemplate,
	KindMapping,
	KindTransformation,
	KindFileRef,
}

// PlatformKinds are the kinds that map 1:1 onto simple platform primitives.
var PlatformKinds = []Kind{
	KindAsset,
	KindRelationship,
	KindSequence,
	KindLabel,
	KindEvent,
}

// DataModelKinds are the graph-structured model description kinds.
var DataModelKinds = []Kind{
	KindModelTemplate,
	KindMapping,
	KindTransformation,
	KindFileRef,
}

func (k Kind) String() string {
	return string(k)
}

// ErrUnknownKind is returned when a value that is not a known resource record is
// added to a Collection.
var ErrUnknownKind = errors.New("unknown resource kind")

// Resource is implemented by every record a Collection can hold. The interface is
// sealed: only the record types in this package satisfy it.
type Resource interface {
	GetKind() Kind
	GetExternalID() string
	sealed()
}

// PlatformResource is a Resource written through the simple platform endpoints.
// These carry a data set linkage the writer stamps before upserting.
type PlatformResource interface {
	Resource
	SetDataSetID(id int64)
	GetDataSetID() *int64
}

// MetadataCarrier is implemented by records that carry a free-form metadata map.
type MetadataCarrier interface {
	GetMetadata() map[string]any
}

// Label references a label definition by external id.
type Label struct {
	ExternalID string `json:"externalId" yaml:"externalId"`
}

// LabelsOf builds label references from external ids.
func LabelsOf(externalIDs ...string) []Label {
	if len(externalIDs) == 0 {
		return nil
	}
	rv := make([]Label, 0, len(externalIDs))
	for _, id := range externalIDs {
		rv = append(rv, Label{ExternalID: id})
	}
	return rv
}
