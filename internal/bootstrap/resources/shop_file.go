package resources

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ShopFileKind classifies a SHOP input file.
type ShopFileKind string

const (
	ShopFileModel    ShopFileKind = "model"
	ShopFileCut      ShopFileKind = "cut"
	ShopFileCommands ShopFileKind = "commands"
	ShopFileCase     ShopFileKind = "case"
	ShopFileExtra    ShopFileKind = "extra"
)

// ShopFileInfo is the part of a shop file known before its content is hashed.
type ShopFileInfo struct {
	Watercourse string       `json:"watercourse" yaml:"watercourse"`
	FileName    string       `json:"fileName" yaml:"fileName"`
	FileKind    ShopFileKind `json:"fileKind" yaml:"fileKind"`
	// Path is the local file system path. It is empty for files read from the platform.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ExternalID is "<watercourse>_<file stem>".
func (i ShopFileInfo) ExternalID() string {
	stem := strings.TrimSuffix(i.FileName, filepath.Ext(i.FileName))
	return fmt.Sprintf("%s_%s", i.Watercourse, stem)
}

// File metadata keys written at upload and read back to rebuild a ShopFile.
const (
	MetadataHash        = "hash"
	MetadataWatercourse = "watercourse"
	MetadataFileKind    = "type"
	MetadataFileName    = "file_name"
)

// ShopFileInfoFromMetadata rebuilds the info of an uploaded file. The platform file
// name is used when the metadata lacks one.
func ShopFileInfoFromMetadata(md map[string]string, name string) ShopFileInfo {
	info := ShopFileInfo{
		Watercourse: md[MetadataWatercourse],
		FileName:    md[MetadataFileName],
		FileKind:    ShopFileKind(md[MetadataFileKind]),
	}
	if info.FileName == "" {
		info.FileName = name
	}
	return info
}

// ShopFile is either a PendingShopFile or a HashedShopFile.
type ShopFile interface {
	Resource
	GetInfo() ShopFileInfo
	shopFile()
}

// PendingShopFile is a shop file whose content hash has not been computed yet.
type PendingShopFile struct {
	ShopFileInfo `yaml:",inline"`
}

// NewPendingShopFile registers a local file for later hashing and upload.
func NewPendingShopFile(watercourse, path string, kind ShopFileKind) *PendingShopFile {
	return &PendingShopFile{ShopFileInfo: ShopFileInfo{
		Watercourse: watercourse,
		FileName:    filepath.Base(path),
		FileKind:    kind,
		Path:        path,
	}}
}

func (p *PendingShopFile) GetKind() Kind         { return KindShopFile }
func (p *PendingShopFile) GetExternalID() string { return p.ExternalID() }
func (p *PendingShopFile) GetInfo() ShopFileInfo { return p.ShopFileInfo }
func (p *PendingShopFile) sealed()               {}
func (p *PendingShopFile) shopFile()             {}

// Finalize consumes the pending file and returns its hashed counterpart.
func (p *PendingShopFile) Finalize(hash string) *HashedShopFile {
	return &HashedShopFile{ShopFileInfo: p.ShopFileInfo, Hash: hash}
}

// HashedShopFile is a shop file with a known content hash, ready for upload or diffing.
type HashedShopFile struct {
	ShopFileInfo `yaml:",inline"`
	Hash         string `json:"hash" yaml:"hash"`
}

func (h *HashedShopFile) GetKind() Kind         { return KindShopFile }
func (h *HashedShopFile) GetExternalID() string { return h.ExternalID() }
func (h *HashedShopFile) GetInfo() ShopFileInfo { return h.ShopFileInfo }
func (h *HashedShopFile) sealed()               {}
func (h *HashedShopFile) shopFile()             {}

// FileMetadata is the metadata attached to the uploaded file. ShopFileInfoFromMetadata
// reverses it.
func (h *HashedShopFile) FileMetadata() map[string]string {
	return map[string]string{
		MetadataHash:        h.Hash,
		MetadataWatercourse: h.Watercourse,
		MetadataFileKind:    string(h.FileKind),
		MetadataFileName:    h.FileName,
	}
}
