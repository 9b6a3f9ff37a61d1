package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-eff/internal/genome"
)

// GenomeCache manages a gob-serialized genome snapshot on disk:
//
//	{dir}/genome.gob       (feature arena)
//	{dir}/genome.gob.meta  (source file fingerprints, YAML)
type GenomeCache struct {
	dir string
}

type cacheMeta struct {
	Sources   []fingerprintMeta `yaml:"sources"`
	Features  int               `yaml:"features"`
	CreatedAt string            `yaml:"created_at"`
}

// NewGenomeCache creates a genome cache for the given directory.
func NewGenomeCache(dir string) *GenomeCache {
	return &GenomeCache{dir: dir}
}

// Path returns the snapshot file path.
func (gc *GenomeCache) Path() string {
	return filepath.Join(gc.dir, "genome.gob")
}

func (gc *GenomeCache) metaPath() string {
	return gc.Path() + ".meta"
}

// Valid checks whether the snapshot was built from the given source files.
func (gc *GenomeCache) Valid(sources ...FileFingerprint) bool {
	meta, err := gc.readMeta()
	if err != nil || len(meta.Sources) != len(sources) {
		return false
	}
	for i, fp := range sources {
		if !meta.Sources[i].matches(fp) {
			return false
		}
	}
	_, err = os.Stat(gc.Path())
	return err == nil
}

// Load decodes the snapshot and rebuilds the genome from it.
func (gc *GenomeCache) Load() (*genome.Genome, error) {
	return ReadSnapshot(gc.Path())
}

// Write stores the genome snapshot and the fingerprints of its sources.
func (gc *GenomeCache) Write(g *genome.Genome, sources ...FileFingerprint) error {
	if err := os.MkdirAll(gc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := WriteSnapshot(gc.Path(), g); err != nil {
		return err
	}

	meta := cacheMeta{
		Features:  g.Len(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, fp := range sources {
		meta.Sources = append(meta.Sources, fp.meta())
	}
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("encode cache metadata: %w", err)
	}
	return os.WriteFile(gc.metaPath(), data, 0644)
}

// Clear removes the cached files.
func (gc *GenomeCache) Clear() {
	os.Remove(gc.Path())
	os.Remove(gc.metaPath())
}

func (gc *GenomeCache) readMeta() (*cacheMeta, error) {
	data, err := os.ReadFile(gc.metaPath())
	if err != nil {
		return nil, err
	}
	var meta cacheMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// WriteSnapshot gob-encodes the genome arena to path.
func WriteSnapshot(path string, g *genome.Genome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(g.Snapshot()); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot. The hierarchy
// is re-validated on restore.
func ReadSnapshot(path string) (*genome.Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var snap genome.Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	g, err := genome.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return g, nil
}
