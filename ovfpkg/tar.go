package ovfpkg

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glennmatthews/cot/errors"
)

// findDescriptorInTar scans tarPath's entries in order for the first one
// ending in ".ovf" - relaxing the OVF spec's "descriptor must be first"
// rule for read compatibility, per spec.md section 4.1.
func findDescriptorInTar(tarPath string) (string, error) {
	f, err := os.Open(tarPath)
	if err != nil {
		return "", errors.Wrap(errors.Environmental, err, "opening %s", tarPath)
	}
	defer f.Close()

	tr := tar.NewReader(f)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(errors.InvalidInput, err, "malformed TAR archive %s", tarPath)
		}
		if header.Typeflag == tar.TypeReg && strings.EqualFold(pathExt(header.Name), ".ovf") {
			return header.Name, nil
		}
	}
	return "", errors.New(errors.InvalidInput, "no .ovf descriptor entry found in %s", tarPath)
}

func pathExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

// openTarMember re-opens p's underlying TAR file and scans forward to the
// entry named name, returning a reader bounded to that entry's body. Each
// call re-scans from the start rather than caching entry offsets: OVA
// packages are small enough (member count in the tens) that a second
// linear scan per access is cheaper than maintaining an index that must
// be invalidated on write.
func (p *Package) openTarMember(name string) (io.Reader, io.Closer, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.Environmental, err, "opening %s", p.path)
	}
	tr := tar.NewReader(f)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			f.Close()
			return nil, nil, errors.New(errors.NotFound, "no member %q in %s", name, p.path)
		}
		if err != nil {
			f.Close()
			return nil, nil, errors.Wrap(errors.InvalidInput, err, "malformed TAR archive %s", p.path)
		}
		if header.Name == name {
			return tr, f, nil
		}
	}
}

// Members lists every member name present in the package - sibling *.ovf,
// manifest, and payload files for FormDirectory, or every regular TAR
// entry for FormTAR, in each case excluding the descriptor itself.
func (p *Package) Members() ([]string, error) {
	if p.form == FormDirectory {
		return p.membersInDir()
	}
	return p.membersInTar()
}

func (p *Package) membersInDir() ([]string, error) {
	dirPath := filepath.Dir(p.path)
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, errors.Wrap(errors.Environmental, err, "reading directory %s", dirPath)
	}
	descriptorName := p.DescriptorName()
	var out []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == descriptorName {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

func (p *Package) membersInTar() ([]string, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, errors.Wrap(errors.Environmental, err, "opening %s", p.path)
	}
	defer f.Close()

	var out []string
	tr := tar.NewReader(f)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.InvalidInput, err, "malformed TAR archive %s", p.path)
		}
		if header.Typeflag == tar.TypeReg && header.Name != p.descriptorMember {
			out = append(out, header.Name)
		}
	}
	return out, nil
}
