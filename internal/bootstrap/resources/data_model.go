package resources

// The data-model kinds below are apply (write) forms. Read forms returned by the
// platform carry additional server fields and are converted back before diffing.

// FileRef points a model template at an uploaded file.
type FileRef struct {
	ExternalID     string `json:"externalId" yaml:"externalId"`
	Type           string `json:"type" yaml:"type"`
	FileExternalID string `json:"fileExternalId" yaml:"fileExternalId"`
}

func (f *FileRef) GetKind() Kind         { return KindFileRef }
func (f *FileRef) GetExternalID() string { return f.ExternalID }
func (f *FileRef) sealed()               {}

// Transformation is one step applied to a time series before it is fed to a model.
type Transformation struct {
	ExternalID string         `json:"externalId" yaml:"externalId"`
	Method     string         `json:"method" yaml:"method"`
	Arguments  map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Order      int            `json:"order" yaml:"order"`
}

func (t *Transformation) GetKind() Kind         { return KindTransformation }
func (t *Transformation) GetExternalID() string { return t.ExternalID }
func (t *Transformation) sealed()               {}

// Mapping binds a model attribute path to a time series and its transformations.
type Mapping struct {
	ExternalID           string   `json:"externalId" yaml:"externalId"`
	Path                 string   `json:"path" yaml:"path"`
	TimeSeriesExternalID string   `json:"timeSeriesExternalId,omitempty" yaml:"timeSeriesExternalId,omitempty"`
	Retrieve             string   `json:"retrieve,omitempty" yaml:"retrieve,omitempty"`
	Aggregation          string   `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
	Transformations      []string `json:"transformations,omitempty" yaml:"transformations,omitempty"`
}

func (m *Mapping) GetKind() Kind         { return KindMapping }
func (m *Mapping) GetExternalID() string { return m.ExternalID }
func (m *Mapping) sealed()               {}

// ModelTemplate ties a watercourse model file to its base mappings.
type ModelTemplate struct {
	ExternalID      string   `json:"externalId" yaml:"externalId"`
	TemplateVersion string   `json:"templateVersion" yaml:"templateVersion"`
	ShopVersion     string   `json:"shopVersion" yaml:"shopVersion"`
	Watercourse     string   `json:"watercourse" yaml:"watercourse"`
	Model           string   `json:"model,omitempty" yaml:"model,omitempty"`
	BaseMappings    []string `json:"baseMappings,omitempty" yaml:"baseMappings,omitempty"`
}

func (m *ModelTemplate) GetKind() Kind         { return KindModelTemplate }
func (m *ModelTemplate) GetExternalID() string { return m.ExternalID }
func (m *ModelTemplate) sealed()               {}
