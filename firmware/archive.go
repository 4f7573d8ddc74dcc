// Package firmware reads Crazyflie release archives and fetches them from the
// published releases.
package firmware

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/mikehamer/crazypilot/crazyflie"
)

const (
	manifestName    = "manifest.json"
	manifestVersion = 1

	// DefaultPlatform is the Crazyflie 2.x.
	DefaultPlatform = "cf2"
	firmwareType    = "fw"
)

// Manifest describes the files of a release archive.
type Manifest struct {
	Version int             `json:"version"`
	Files   map[string]File `json:"files"`
}

type File struct {
	Platform string `json:"platform"`
	Target   string `json:"target"`
	Type     string `json:"type"`
}

// Key names a file the way images are looked up, e.g. "cf2-stm32-fw".
func (f File) Key() string {
	return f.Platform + "-" + f.Target + "-" + f.Type
}

// Archive is an unpacked release: every file of its manifest, by key.
type Archive struct {
	Manifest Manifest
	files    map[string][]byte
}

// ReadArchive unpacks a release zip.
func ReadArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "firmware: reading archive")
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	m, ok := entries[manifestName]
	if !ok {
		return nil, ErrorNoManifest
	}
	raw, err := readEntry(m)
	if err != nil {
		return nil, err
	}

	a := &Archive{files: make(map[string][]byte)}
	if err := json.Unmarshal(raw, &a.Manifest); err != nil {
		return nil, errors.Wrap(err, "firmware: decoding manifest")
	}
	if a.Manifest.Version != manifestVersion {
		return nil, errors.Wrapf(ErrorManifestVersion, "version %d", a.Manifest.Version)
	}

	for name, file := range a.Manifest.Files {
		entry, ok := entries[name]
		if !ok {
			return nil, errors.Wrap(ErrorMissingFile, name)
		}
		data, err := readEntry(entry)
		if err != nil {
			return nil, err
		}
		a.files[file.Key()] = data
	}
	return a, nil
}

// ParseArchive unpacks a release zip held in memory.
func ParseArchive(data []byte) (*Archive, error) {
	return ReadArchive(bytes.NewReader(data), int64(len(data)))
}

func OpenArchive(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "firmware")
	}
	return ParseArchive(data)
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "firmware: opening %s", f.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "firmware: reading %s", f.Name)
	}
	return data, nil
}

// File returns the content stored under key.
func (a *Archive) File(key string) ([]byte, bool) {
	data, ok := a.files[key]
	return data, ok
}

// Images returns the firmware of every CPU of platform, STM32 first so that
// the radio CPU is rewritten last.
func (a *Archive) Images(platform string) ([]crazyflie.Image, error) {
	var images []crazyflie.Image
	for _, file := range a.Manifest.Files {
		if file.Platform != platform || file.Type != firmwareType {
			continue
		}
		target, err := crazyflie.ParseTarget(file.Target)
		if err != nil {
			continue
		}
		images = append(images, crazyflie.Image{Target: target, Data: a.files[file.Key()]})
	}
	if len(images) == 0 {
		return nil, errors.Wrap(ErrorMissingImage, platform)
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Target > images[j].Target })
	return images, nil
}
