package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/cognite/powerops/internal/bootstrap/model"
)

// Loader handles loading bootstrap configuration from files
type Loader struct {
	rootPath string
}

// New creates a new configuration loader
func New(rootPath string) *Loader {
	return &Loader{
		rootPath: rootPath,
	}
}

// Load loads a single file, or every YAML file of a directory in name order.
func (l *Loader) Load() (*model.Config, error) {
	info, err := os.Stat(l.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %s: %w", l.rootPath, err)
	}

	var cfg *model.Config
	if info.IsDir() {
		cfg, err = l.loadDirectory()
	} else {
		cfg, err = l.loadFile(l.rootPath)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed for %s: %w", l.rootPath, err)
	}
	return cfg, nil
}

// LoadFile loads and validates configuration from a single YAML file
func (l *Loader) LoadFile(path string) (*model.Config, error) {
	cfg, err := l.loadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed for %s: %w", path, err)
	}
	return cfg, nil
}

func (l *Loader) loadFile(path string) (*model.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := l.parseYAML(file, path)
	if err != nil {
		return nil, err
	}
	resolveShopFilePaths(cfg, filepath.Dir(path))
	return cfg, nil
}

// parseYAML parses YAML content into a Config. Unknown keys are rejected.
func (l *Loader) parseYAML(r io.Reader, sourcePath string) (*model.Config, error) {
	var cfg model.Config

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content from %s: %w", sourcePath, err)
	}

	if err := yaml.UnmarshalStrict(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", sourcePath, err)
	}

	return &cfg, nil
}

func (l *Loader) loadDirectory() (*model.Config, error) {
	entries, err := os.ReadDir(l.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", l.rootPath, err)
	}

	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no YAML files found in %s", l.rootPath)
	}
	sort.Strings(names)

	merged := &model.Config{}
	for _, name := range names {
		cfg, err := l.loadFile(filepath.Join(l.rootPath, name))
		if err != nil {
			return nil, err
		}
		merged.Merge(cfg)
	}
	return merged, nil
}

// resolveShopFilePaths makes relative shop file paths relative to the config file.
func resolveShopFilePaths(cfg *model.Config, baseDir string) {
	for i := range cfg.Watercourses {
		files := cfg.Watercourses[i].ShopFiles
		for j := range files {
			if files[j].Path != "" && !filepath.IsAbs(files[j].Path) {
				files[j].Path = filepath.Join(baseDir, files[j].Path)
			}
		}
	}
}
