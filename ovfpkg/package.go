// Package ovfpkg implements the on-disk package container: locating and
// reading an OVF/OVA's descriptor and member files, manifest
// verification, and writing an edited package back out. Grounded on
// storage.TarGcsExtractor (tar_gcs_extractor.go) for the streaming
// member-access pattern and exporter.manifest_file_generator.go for the
// manifest line format, both adapted from GCS object access to plain
// local files.
package ovfpkg

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glennmatthews/cot/errors"
)

// Form identifies how a Package is laid out on disk.
type Form int

// Recognized package forms (spec.md section 4.1).
const (
	// FormDirectory is an exploded OVF: path is itself the descriptor
	// file, and every other member is a sibling file in the same
	// directory.
	FormDirectory Form = iota
	// FormTAR is an OVA: a single TAR archive containing the descriptor
	// and every member as entries.
	FormTAR
)

// Package is an opened OVF/OVA container. It does not hold the whole
// archive in memory - ReadMember streams each member on demand.
type Package struct {
	form Form
	// path is the descriptor file path for FormDirectory, or the TAR
	// file path for FormTAR.
	path string
	// descriptorMember is the TAR entry name of the descriptor, set only
	// for FormTAR.
	descriptorMember string
}

// Open probes path and returns the Package it names. A directory or a
// plain XML file opens as FormDirectory; anything else is assumed to be
// a TAR archive and is scanned for its first *.ovf entry.
func Open(path string) (*Package, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.Environmental, err, "opening %s", path)
	}
	if info.IsDir() {
		descriptor, err := findDescriptorInDir(path)
		if err != nil {
			return nil, err
		}
		return &Package{form: FormDirectory, path: descriptor}, nil
	}
	if looksLikeXML(path) {
		return &Package{form: FormDirectory, path: path}, nil
	}
	member, err := findDescriptorInTar(path)
	if err != nil {
		return nil, err
	}
	return &Package{form: FormTAR, path: path, descriptorMember: member}, nil
}

// Form returns how this package is laid out on disk.
func (p *Package) Form() Form { return p.form }

// Path returns the on-disk path this Package was opened from - the
// descriptor file for FormDirectory, the TAR file for FormTAR.
func (p *Package) Path() string { return p.path }

// DescriptorName returns the descriptor's member name: its base file
// name for FormDirectory, or its TAR entry name for FormTAR.
func (p *Package) DescriptorName() string {
	if p.form == FormDirectory {
		return filepath.Base(p.path)
	}
	return p.descriptorMember
}

// ReadDescriptor returns the descriptor's raw bytes.
func (p *Package) ReadDescriptor() ([]byte, error) {
	return p.ReadMember(p.DescriptorName())
}

// ReadMember returns the full contents of the member with the given
// name - the sibling file's base name for FormDirectory, or the TAR
// entry name for FormTAR (spec.md section 4.1's read_member).
func (p *Package) ReadMember(name string) ([]byte, error) {
	if p.form == FormDirectory {
		data, err := os.ReadFile(filepath.Join(filepath.Dir(p.path), name))
		if err != nil {
			return nil, errors.Wrap(errors.Environmental, err, "reading member %q", name)
		}
		return data, nil
	}
	r, closer, err := p.openTarMember(name)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.Environmental, err, "reading member %q", name)
	}
	return data, nil
}

func looksLikeXML(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".ovf") {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return bytes.Contains(buf[:n], []byte("<?xml")) || bytes.Contains(buf[:n], []byte("<Envelope"))
}

func findDescriptorInDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(errors.Environmental, err, "reading directory %s", dir)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".ovf") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", errors.New(errors.InvalidInput, "no .ovf descriptor found in directory %s", dir)
}
