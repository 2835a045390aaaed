package checklist

import (
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/burnout909/ai-cpx-app-sub001/logger"
)

// BaseCaseName is the bundle used when an unrecognized case name is resolved.
const BaseCaseName = "base"

// Registry holds the static per-case checklist bundles. Bundles are loaded
// once from a directory of YAML files (one file per case, file name is the
// case name); lookups fall back to the base bundle for unknown cases.
type Registry struct {
	mu      sync.RWMutex
	bundles map[string]Checklist
}

type bundleFile struct {
	Sections map[Section][]Item `yaml:"sections"`
}

// LoadRegistry reads every *.yaml bundle under dirPath. Files are loaded
// concurrently; a malformed bundle is logged and skipped rather than failing
// the whole registry. The directory must contain a base bundle.
func LoadRegistry(dirPath string) (*Registry, error) {
	cpxLogger := logger.NewLogger("ChecklistRegistry")

	files, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	type loaded struct {
		name   string
		bundle Checklist
	}

	var wg sync.WaitGroup
	bundleChan := make(chan loaded, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			caseName := strings.TrimSuffix(name, ".yaml")
			buf, err := os.ReadFile(path.Join(dirPath, name))
			if err != nil {
				cpxLogger.Err(err).Str("case_name", caseName).Msg("Failed to read bundle file")
				return
			}
			var file bundleFile
			if err := yaml.Unmarshal(buf, &file); err != nil {
				cpxLogger.Err(err).Str("case_name", caseName).Msg("Failed to parse bundle file")
				return
			}
			if file.Sections == nil {
				file.Sections = map[Section][]Item{}
			}
			bundle := Checklist(file.Sections)
			for _, section := range Sections() {
				if _, ok := bundle[section]; !ok {
					bundle[section] = nil
				}
			}
			bundleChan <- loaded{name: caseName, bundle: bundle}
		}(f.Name())
	}

	wg.Wait()
	close(bundleChan)

	bundles := make(map[string]Checklist)
	for l := range bundleChan {
		bundles[l.name] = l.bundle
	}
	if _, ok := bundles[BaseCaseName]; !ok {
		return nil, fmt.Errorf("bundle directory %q has no %q bundle", dirPath, BaseCaseName)
	}
	cpxLogger.Info().Msgf("Loaded %d checklist bundles", len(bundles))
	return &Registry{bundles: bundles}, nil
}

// NewRegistry builds a registry from already-materialized bundles. Used by
// tests and by embedders that manage bundle loading themselves.
func NewRegistry(bundles map[string]Checklist) *Registry {
	copied := make(map[string]Checklist, len(bundles))
	for name, bundle := range bundles {
		copied[name] = bundle.Clone()
	}
	return &Registry{bundles: copied}
}

// Get resolves caseName to its bundle, falling back to the base bundle when
// the name is unrecognized.
func (r *Registry) Get(caseName string) Checklist {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if bundle, ok := r.bundles[caseName]; ok {
		return bundle.Clone()
	}
	return r.bundles[BaseCaseName].Clone()
}

// Has reports whether an exact bundle exists for caseName.
func (r *Registry) Has(caseName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bundles[caseName]
	return ok
}
