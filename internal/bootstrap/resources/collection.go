package resources

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/mitchellh/copystructure"
)

// Collection is a keyed set of records per kind. Within a kind, records are keyed by
// external id and a later insert replaces an earlier one.
type Collection struct {
	Assets          map[string]*Asset           `json:"assets,omitempty" yaml:"assets,omitempty"`
	Relationships   map[string]*Relationship    `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	Sequences       map[string]*Sequence        `json:"sequences,omitempty" yaml:"sequences,omitempty"`
	Labels          map[string]*LabelDefinition `json:"labels,omitempty" yaml:"labels,omitempty"`
	Events          map[string]*Event           `json:"events,omitempty" yaml:"events,omitempty"`
	SequenceContent map[string]*SequenceContent `json:"sequenceContent,omitempty" yaml:"sequenceContent,omitempty"`
	ShopFiles       map[string]ShopFile         `json:"shopFiles,omitempty" yaml:"shopFiles,omitempty"`
	ModelTemplates  map[string]*ModelTemplate   `json:"modelTemplates,omitempty" yaml:"modelTemplates,omitempty"`
	Mappings        map[string]*Mapping         `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	Transformations map[string]*Transformation  `json:"transformations,omitempty" yaml:"transformations,omitempty"`
	FileRefs        map[string]*FileRef         `json:"fileRefs,omitempty" yaml:"fileRefs,omitempty"`
}

// NewCollection returns an empty collection, optionally seeded with records.
func NewCollection(items ...Resource) (*Collection, error) {
	c := &Collection{}
	c.init()
	if err := c.Add(items...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustCollection is NewCollection that panics on an unknown record.
func MustCollection(items ...Resource) *Collection {
	c, err := NewCollection(items...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collection) init() {
	if c.Assets == nil {
		c.Assets = map[string]*Asset{}
	}
	if c.Relationships == nil {
		c.Relationships = map[string]*Relationship{}
	}
	if c.Sequences == nil {
		c.Sequences = map[string]*Sequence{}
	}
	if c.Labels == nil {
		c.Labels = map[string]*LabelDefinition{}
	}
	if c.Events == nil {
		c.Events = map[string]*Event{}
	}
	if c.SequenceContent == nil {
		c.SequenceContent = map[string]*SequenceContent{}
	}
	if c.ShopFiles == nil {
		c.ShopFiles = map[string]ShopFile{}
	}
	if c.ModelTemplates == nil {
		c.ModelTemplates = map[string]*ModelTemplate{}
	}
	if c.Mappings == nil {
		c.Mappings = map[string]*Mapping{}
	}
	if c.Transformations == nil {
		c.Transformations = map[string]*Transformation{}
	}
	if c.FileRefs == nil {
		c.FileRefs = map[string]*FileRef{}
	}
}

// Add inserts records into their kind's map. Adding a nil value or a value that is
// not a known record returns ErrUnknownKind; records added before the offending one
// are kept.
func (c *Collection) Add(items ...Resource) error {
	c.init()
	for _, item := range items {
		if v := reflect.ValueOf(item); item != nil && v.Kind() == reflect.Pointer && v.IsNil() {
			return fmt.Errorf("%w: nil %T", ErrUnknownKind, item)
		}
		switch r := item.(type) {
		case *Asset:
			c.Assets[r.ExternalID] = r
		case *Relationship:
			c.Relationships[r.ExternalID] = r
		case *Sequence:
			c.Sequences[r.ExternalID] = r
		case *LabelDefinition:
			c.Labels[r.ExternalID] = r
		case *Event:
			c.Events[r.ExternalID] = r
		case *SequenceContent:
			c.SequenceContent[r.SequenceExternalID] = r
		case *PendingShopFile:
			c.ShopFiles[r.GetExternalID()] = r
		case *HashedShopFile:
			c.ShopFiles[r.GetExternalID()] = r
		case *ModelTemplate:
			c.ModelTemplates[r.ExternalID] = r
		case *Mapping:
			c.Mappings[r.ExternalID] = r
		case *Transformation:
			c.Transformations[r.ExternalID] = r
		case *FileRef:
			c.FileRefs[r.ExternalID] = r
		default:
			return fmt.Errorf("%w: %T", ErrUnknownKind, item)
		}
	}
	return nil
}

// Combine returns a new collection holding the union of c and other. On an
// external id present in both, the record from other wins. Neither input is
// modified; records are shared, not copied.
func (c *Collection) Combine(other *Collection) *Collection {
	rv := &Collection{}
	rv.init()
	rv.Merge(c)
	rv.Merge(other)
	return rv
}

// Merge is the in-place form of Combine.
func (c *Collection) Merge(other *Collection) {
	c.init()
	if other == nil {
		return
	}
	union(c.Assets, other.Assets)
	union(c.Relationships, other.Relationships)
	union(c.Sequences, other.Sequences)
	union(c.Labels, other.Labels)
	union(c.Events, other.Events)
	union(c.SequenceContent, other.SequenceContent)
	union(c.ShopFiles, other.ShopFiles)
	union(c.ModelTemplates, other.ModelTemplates)
	union(c.Mappings, other.Mappings)
	union(c.Transformations, other.Transformations)
	union(c.FileRefs, other.FileRefs)
}

func union[V any](dst, src map[string]V) {
	for k, v := range src {
		dst[k] = v
	}
}

// Copy returns a deep copy. Mutating the copy never affects the original.
func (c *Collection) Copy() *Collection {
	c.init()
	rv := copystructure.Must(copystructure.Copy(c)).(*Collection)
	rv.init()
	return rv
}

// Collisions lists "<kind>/<external id>" for every key present in both
// collections, i.e. the records Combine would overwrite.
func (c *Collection) Collisions(other *Collection) []string {
	if other == nil {
		return nil
	}
	var rv []string
	for _, kind := range AllKinds {
		for _, id := range c.ExternalIDs(kind) {
			if other.Has(kind, id) {
				rv = append(rv, fmt.Sprintf("%s/%s", kind, id))
			}
		}
	}
	return rv
}

// Has reports whether a record of the given kind and external id is present.
func (c *Collection) Has(kind Kind, externalID string) bool {
	switch kind {
	case KindAsset:
		return has(c.Assets, externalID)
	case KindRelationship:
		return has(c.Relationships, externalID)
	case KindSequence:
		return has(c.Sequences, externalID)
	case KindLabel:
		return has(c.Labels, externalID)
	case KindEvent:
		return has(c.Events, externalID)
	case KindSequenceContent:
		return has(c.SequenceContent, externalID)
	case KindShopFile:
		return has(c.ShopFiles, externalID)
	case KindModelTemplate:
		return has(c.ModelTemplates, externalID)
	case KindMapping:
		return has(c.Mappings, externalID)
	case KindTransformation:
		return has(c.Transformations, externalID)
	case KindFileRef:
		return has(c.FileRefs, externalID)
	}
	return false
}

func has[V any](m map[string]V, key string) bool {
	_, ok := m[key]
	return ok
}

// ExternalIDs returns the sorted keys of one kind.
func (c *Collection) ExternalIDs(kind Kind) []string {
	switch kind {
	case KindAsset:
		return keys(c.Assets)
	case KindRelationship:
		return keys(c.Relationships)
	case KindSequence:
		return keys(c.Sequences)
	case KindLabel:
		return keys(c.Labels)
	case KindEvent:
		return keys(c.Events)
	case KindSequenceContent:
		return keys(c.SequenceContent)
	case KindShopFile:
		return keys(c.ShopFiles)
	case KindModelTemplate:
		return keys(c.ModelTemplates)
	case KindMapping:
		return keys(c.Mappings)
	case KindTransformation:
		return keys(c.Transformations)
	case KindFileRef:
		return keys(c.FileRefs)
	}
	return nil
}

// Len returns the number of records of one kind.
func (c *Collection) Len(kind Kind) int {
	return len(c.ExternalIDs(kind))
}

// Size returns the total number of records across all kinds.
func (c *Collection) Size() int {
	n := 0
	for _, kind := range AllKinds {
		n += c.Len(kind)
	}
	return n
}

// Resources returns the records of one kind ordered by external id.
func (c *Collection) Resources(kind Kind) []Resource {
	var rv []Resource
	switch kind {
	case KindAsset:
		rv = appendResources(rv, c.Assets)
	case KindRelationship:
		rv = appendResources(rv, c.Relationships)
	case KindSequence:
		rv = appendResources(rv, c.Sequences)
	case KindLabel:
		rv = appendResources(rv, c.Labels)
	case KindEvent:
		rv = appendResources(rv, c.Events)
	case KindSequenceContent:
		rv = appendResources(rv, c.SequenceContent)
	case KindShopFile:
		rv = appendResources(rv, c.ShopFiles)
	case KindModelTemplate:
		rv = appendResources(rv, c.ModelTemplates)
	case KindMapping:
		rv = appendResources(rv, c.Mappings)
	case KindTransformation:
		rv = appendResources(rv, c.Transformations)
	case KindFileRef:
		rv = appendResources(rv, c.FileRefs)
	}
	return rv
}

// AllPlatformResources flattens assets, relationships, sequences, labels and events
// into one list, grouped by kind and ordered by external id within a kind.
func (c *Collection) AllPlatformResources() []PlatformResource {
	var rv []PlatformResource
	for _, kind := range PlatformKinds {
		for _, r := range c.Resources(kind) {
			rv = append(rv, r.(PlatformResource))
		}
	}
	return rv
}

// PendingShopFiles returns shop files that have not been finalized yet.
func (c *Collection) PendingShopFiles() []*PendingShopFile {
	var rv []*PendingShopFile
	for _, sf := range Values(c.ShopFiles) {
		if p, ok := sf.(*PendingShopFile); ok {
			rv = append(rv, p)
		}
	}
	return rv
}

// FinalizeShopFiles replaces every pending shop file with its hashed form. The
// hasher receives the local path of each file.
func (c *Collection) FinalizeShopFiles(hasher func(path string) (string, error)) error {
	for _, p := range c.PendingShopFiles() {
		h, err := hasher(p.Path)
		if err != nil {
			return fmt.Errorf("hashing shop file %s: %w", p.Path, err)
		}
		c.ShopFiles[p.GetExternalID()] = p.Finalize(h)
	}
	return nil
}

// Values returns map values ordered by key.
func Values[V any](m map[string]V) []V {
	rv := make([]V, 0, len(m))
	for _, k := range keys(m) {
		rv = append(rv, m[k])
	}
	return rv
}

func keys[V any](m map[string]V) []string {
	rv := make([]string, 0, len(m))
	for k := range m {
		rv = append(rv, k)
	}
	sort.Strings(rv)
	return rv
}

func appendResources[V Resource](dst []Resource, m map[string]V) []Resource {
	for _, v := range Values(m) {
		dst = append(dst, v)
	}
	return dst
}
