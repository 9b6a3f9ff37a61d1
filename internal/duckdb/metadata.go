package duckdb

import (
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file. An empty path
// yields a zero fingerprint so optional inputs still take a slot.
func StatFile(path string) (FileFingerprint, error) {
	if path == "" {
		return FileFingerprint{}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// StatFiles fingerprints each path in order.
func StatFiles(paths ...string) ([]FileFingerprint, error) {
	fps := make([]FileFingerprint, 0, len(paths))
	for _, p := range paths {
		fp, err := StatFile(p)
		if err != nil {
			return nil, err
		}
		fps = append(fps, fp)
	}
	return fps, nil
}

type fingerprintMeta struct {
	Path    string `yaml:"path,omitempty"`
	Size    int64  `yaml:"size"`
	ModTime string `yaml:"modtime"`
}

func (fp FileFingerprint) meta() fingerprintMeta {
	return fingerprintMeta{
		Path:    fp.Path,
		Size:    fp.Size,
		ModTime: fp.ModTime.UTC().Format(time.RFC3339Nano),
	}
}

// matches ignores the path so a moved but unchanged file stays valid.
func (m fingerprintMeta) matches(fp FileFingerprint) bool {
	want := fp.meta()
	return m.Size == want.Size && m.ModTime == want.ModTime
}
