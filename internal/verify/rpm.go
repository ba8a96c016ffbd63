package verify

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sassoftware/go-rpmutils"

	"github.com/ralt/buildmeta/internal/models"
)

// ReadRPM reads the identity of a built RPM from its header
func ReadRPM(path string) (models.Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Artifact{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.Artifact{}, err
	}

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("failed to read RPM: %w", err)
	}

	return models.Artifact{
		Name:     getStringTag(rpm, rpmutils.NAME),
		Version:  getStringTag(rpm, rpmutils.VERSION),
		Release:  getStringTag(rpm, rpmutils.RELEASE),
		Arch:     getStringTag(rpm, rpmutils.ARCH),
		Filename: filepath.Base(path),
		Size:     info.Size(),
	}, nil
}

// getStringTag safely gets a string tag from RPM
func getStringTag(rpm *rpmutils.Rpm, tag int) string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	default:
		return fmt.Sprintf("%v", v)
	}

	return ""
}
