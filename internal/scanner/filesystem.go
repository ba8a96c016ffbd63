package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ralt/buildmeta/internal/dist"
)

// FileSystemScanner walks a local build output directory
type FileSystemScanner struct {
	// IncludeDebug keeps split debug packages in the results
	IncludeDebug bool
}

// NewFileSystemScanner creates a scanner skipping debug packages
func NewFileSystemScanner() *FileSystemScanner {
	return &FileSystemScanner{}
}

// Scan implements Scanner
func (s *FileSystemScanner) Scan(ctx context.Context, dir string, family dist.Family) ([]File, error) {
	var files []File

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !s.IncludeDebug && IsDebugPackage(d.Name()) {
			logrus.Debugf("Skipping debug package %s", path)
			return nil
		}

		found, err := Detect(path)
		if err != nil {
			logrus.Warnf("Failed to detect type for %s: %v", path, err)
			return nil
		}
		if found == dist.FamilyUnknown || (family != dist.FamilyUnknown && found != family) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		logrus.Debugf("Found %s package: %s", found, path)
		files = append(files, File{Path: path, Family: found, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	logrus.Infof("Found %d packages in %s", len(files), dir)
	return files, nil
}
