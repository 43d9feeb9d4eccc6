package resources

// DataSetLink is embedded by records that can be scoped to a data set.
type DataSetLink struct {
	DataSetID *int64 `json:"dataSetId,omitempty" yaml:"dataSetId,omitempty"`
}

func (d *DataSetLink) SetDataSetID(id int64) {
	d.DataSetID = &id
}

func (d *DataSetLink) GetDataSetID() *int64 {
	return d.DataSetID
}

// ServerFields are assigned by the platform and only present on records read back
// from it.
type ServerFields struct {
	ID              int64 `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedTime     int64 `json:"createdTime,omitempty" yaml:"createdTime,omitempty"`
	LastUpdatedTime int64 `json:"lastUpdatedTime,omitempty" yaml:"lastUpdatedTime,omitempty"`
}

// Asset is an entity in the asset hierarchy (watercourse, plant, generator, ...).
type Asset struct {
	ExternalID       string         `json:"externalId" yaml:"externalId"`
	Name             string         `json:"name" yaml:"name"`
	ParentExternalID string         `json:"parentExternalId,omitempty" yaml:"parentExternalId,omitempty"`
	Description      string         `json:"description,omitempty" yaml:"description,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Labels           []Label        `json:"labels,omitempty" yaml:"labels,omitempty"`
	ParentID         int64          `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	RootID           int64          `json:"rootId,omitempty" yaml:"rootId,omitempty"`
	DataSetLink      `yaml:",inline"`
	ServerFields     `yaml:",inline"`
}

func (a *Asset) GetKind() Kind               { return KindAsset }
func (a *Asset) GetExternalID() string       { return a.ExternalID }
func (a *Asset) GetMetadata() map[string]any { return a.Metadata }
func (a *Asset) sealed()                     {}

// Relationship is a directed edge between two resources identified by external id.
type Relationship struct {
	ExternalID       string  `json:"externalId" yaml:"externalId"`
	SourceExternalID string  `json:"sourceExternalId" yaml:"sourceExternalId"`
	SourceType       string  `json:"sourceType" yaml:"sourceType"`
	TargetExternalID string  `json:"targetExternalId" yaml:"targetExternalId"`
	TargetType       string  `json:"targetType" yaml:"targetType"`
	Labels           []Label `json:"labels,omitempty" yaml:"labels,omitempty"`
	DataSetLink      `yaml:",inline"`
	ServerFields     `yaml:",inline"`
}

// Relationship endpoint types.
const (
	EndpointAsset      = "asset"
	EndpointTimeSeries = "timeSeries"
	EndpointSequence   = "sequence"
	EndpointFile       = "file"
	EndpointEvent      = "event"
)

// RelationshipExternalID derives the conventional "source.target" identifier.
func RelationshipExternalID(source, target string) string {
	return source + "." + target
}

// NewRelationship builds a relationship keyed by "source.target".
func NewRelationship(source, sourceType, target, targetType string, labels ...string) *Relationship {
	return &Relationship{
		ExternalID:       RelationshipExternalID(source, target),
		SourceExternalID: source,
		SourceType:       sourceType,
		TargetExternalID: target,
		TargetType:       targetType,
		Labels:           LabelsOf(labels...),
	}
}

func (r *Relationship) GetKind() Kind         { return KindRelationship }
func (r *Relationship) GetExternalID() string { return r.ExternalID }
func (r *Relationship) sealed()               {}

// SequenceColumn declares one column of a Sequence.
type SequenceColumn struct {
	ExternalID      string         `json:"externalId" yaml:"externalId"`
	Name            string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description     string         `json:"description,omitempty" yaml:"description,omitempty"`
	ValueType       string         `json:"valueType,omitempty" yaml:"valueType,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	CreatedTime     int64          `json:"createdTime,omitempty" yaml:"createdTime,omitempty"`
	LastUpdatedTime int64          `json:"lastUpdatedTime,omitempty" yaml:"lastUpdatedTime,omitempty"`
}

// Column value types.
const (
	ValueTypeDouble = "DOUBLE"
	ValueTypeLong   = "LONG"
	ValueTypeString = "STRING"
)

// Sequence is the metadata of a tabular resource. Its rows live in a SequenceContent
// with the same external id.
type Sequence struct {
	ExternalID      string           `json:"externalId" yaml:"externalId"`
	Name            string           `json:"name,omitempty" yaml:"name,omitempty"`
	Description     string           `json:"description,omitempty" yaml:"description,omitempty"`
	AssetExternalID string           `json:"assetExternalId,omitempty" yaml:"assetExternalId,omitempty"`
	Metadata        map[string]any   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Columns         []SequenceColumn `json:"columns" yaml:"columns"`
	DataSetLink     `yaml:",inline"`
	ServerFields    `yaml:",inline"`
}

func (s *Sequence) GetKind() Kind               { return KindSequence }
func (s *Sequence) GetExternalID() string       { return s.ExternalID }
func (s *Sequence) GetMetadata() map[string]any { return s.Metadata }
func (s *Sequence) sealed()                     {}

// ColumnIDs returns the external ids of the declared columns in order.
func (s *Sequence) ColumnIDs() []string {
	rv := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		rv = append(rv, c.ExternalID)
	}
	return rv
}

// LabelDefinition declares a label that assets and relationships can reference.
type LabelDefinition struct {
	ExternalID  string `json:"externalId" yaml:"externalId"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedTime int64  `json:"createdTime,omitempty" yaml:"createdTime,omitempty"`
	DataSetLink `yaml:",inline"`
}

func (l *LabelDefinition) GetKind() Kind         { return KindLabel }
func (l *LabelDefinition) GetExternalID() string { return l.ExternalID }
func (l *LabelDefinition) sealed()               {}

// BootstrapFinishedEventType marks the event written at the end of every apply.
const BootstrapFinishedEventType = "POWEROPS_BOOTSTRAP_FINISHED"

// Event is a status signal, e.g. the marker written when a bootstrap run completes.
type Event struct {
	ExternalID       string         `json:"externalId" yaml:"externalId"`
	Type             string         `json:"type,omitempty" yaml:"type,omitempty"`
	Subtype          string         `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Description      string         `json:"description,omitempty" yaml:"description,omitempty"`
	StartTime        int64          `json:"startTime,omitempty" yaml:"startTime,omitempty"`
	EndTime          int64          `json:"endTime,omitempty" yaml:"endTime,omitempty"`
	AssetExternalIDs []string       `json:"assetExternalIds,omitempty" yaml:"assetExternalIds,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Source           string         `json:"source,omitempty" yaml:"source,omitempty"`
	DataSetLink      `yaml:",inline"`
	ServerFields     `yaml:",inline"`
}

func (e *Event) GetKind() Kind               { return KindEvent }
func (e *Event) GetExternalID() string       { return e.ExternalID }
func (e *Event) GetMetadata() map[string]any { return e.Metadata }
func (e *Event) sealed()                     {}
