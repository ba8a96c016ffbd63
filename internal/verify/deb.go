package verify

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ralt/buildmeta/internal/extractor/deb"
	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/utils"
)

const (
	arMagic      = "!<arch>\n"
	arHeaderSize = 60
)

// ReadDeb reads the identity of a built Debian package from its control file
func ReadDeb(path string) (models.Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Artifact{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.Artifact{}, err
	}

	control, err := extractControl(f)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("failed to extract control: %w", err)
	}

	paragraphs, err := deb.ParseControl(control)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("failed to parse control: %w", err)
	}
	if len(paragraphs) == 0 {
		return models.Artifact{}, fmt.Errorf("empty control file")
	}

	p := paragraphs[0]
	return models.Artifact{
		Name:     p["package"],
		Version:  p["version"],
		Arch:     p["architecture"],
		Filename: filepath.Base(path),
		Size:     info.Size(),
	}, nil
}

// extractControl returns the control file of a .deb, an ar archive holding
// a control.tar member
func extractControl(r io.ReadSeeker) ([]byte, error) {
	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, err
	}
	if string(magic) != arMagic {
		return nil, fmt.Errorf("not an ar archive")
	}

	header := make([]byte, arHeaderSize)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read ar header: %w", err)
		}

		// GNU ar terminates member names with a slash
		name := strings.TrimRight(strings.TrimSpace(string(header[0:16])), "/")
		size, err := strconv.ParseInt(strings.TrimSpace(string(header[48:58])), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ar member size for %s", name)
		}

		if strings.HasPrefix(name, "control.tar") {
			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, err
			}
			return controlFromTar(data, name)
		}

		// members are aligned to 2 bytes
		if _, err := r.Seek(size+size%2, io.SeekCurrent); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("control.tar not found in package")
}

// controlFromTar extracts the control file from control.tar*
func controlFromTar(data []byte, name string) ([]byte, error) {
	src, err := utils.NewReader(name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer src.Close()

	tr := tar.NewReader(src)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if header.Name == "./control" || header.Name == "control" {
			return io.ReadAll(tr)
		}
	}

	return nil, fmt.Errorf("control file not found in %s", name)
}
