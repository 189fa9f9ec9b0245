package ovfpkg

import (
	"archive/tar"
	"os"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/glennmatthews/cot/errors"
)

// MemberSource supplies one non-descriptor member's final content for a
// Write call, either already in memory (Bytes) or as a path to copy from
// disk (SourcePath) - the latter covers "schedule a copy from the source
// path into the package on write" for a freshly added file (spec.md
// section 4.4), without requiring the caller to read a potentially large
// disk image into memory first.
type MemberSource struct {
	Name       string
	Bytes      []byte
	SourcePath string
}

func (m MemberSource) size() (int64, error) {
	if m.SourcePath != "" {
		info, err := os.Stat(m.SourcePath)
		if err != nil {
			return 0, errors.Wrap(errors.Environmental, err, "stat %s", m.SourcePath)
		}
		return info.Size(), nil
	}
	return int64(len(m.Bytes)), nil
}

// WriteRequest describes a full package write (spec.md section 4.1's
// write operation).
type WriteRequest struct {
	TargetPath        string
	Form              Form
	DescriptorName    string
	DescriptorBytes   []byte
	Members           []MemberSource
	ManifestName      string
	ManifestAlgorithm string
	// ReferenceOrder lists Members' names in the order they appear in the
	// descriptor's References section - the order TAR entries must follow
	// (spec.md section 4.1 step 3). Members not listed here are appended
	// after, in the order given.
	ReferenceOrder []string
	// ConfirmSpace is consulted when the estimated required space exceeds
	// free space at the target; returning false aborts the write. A nil
	// ConfirmSpace treats a shortfall as a refusal.
	ConfirmSpace func(required, available uint64) bool
}

// Write constructs the output package per spec.md section 4.1: computes
// the manifest, detects and avoids self-overwrite of an open input via a
// temp-file-then-rename sequence, and lays out members in the form's
// canonical order.
func (p *Package) Write(req WriteRequest) error {
	if err := p.checkSelfOverwrite(req.TargetPath); err != nil {
		return err
	}

	sourceBytes := func(name string) ([]byte, error) {
		if name == req.DescriptorName {
			return req.DescriptorBytes, nil
		}
		for _, m := range req.Members {
			if m.Name == name {
				if m.Bytes != nil {
					return m.Bytes, nil
				}
				return os.ReadFile(m.SourcePath)
			}
		}
		return nil, errors.New(errors.Internal, "no source registered for member %q", name)
	}

	memberNames := orderedMemberNames(req)
	manifest, err := GenerateManifest(req.ManifestAlgorithm, req.DescriptorName, memberNames, sourceBytes)
	if err != nil {
		return err
	}

	if err := checkDiskSpace(req, manifest, req.ConfirmSpace); err != nil {
		return err
	}

	switch req.Form {
	case FormDirectory:
		return writeDirectory(req, manifest)
	case FormTAR:
		return writeTAR(req, manifest, memberNames)
	default:
		return errors.New(errors.Internal, "unknown package form %d", req.Form)
	}
}

func orderedMemberNames(req WriteRequest) []string {
	seen := make(map[string]bool)
	ordered := make([]string, 0, len(req.Members))
	for _, name := range req.ReferenceOrder {
		if hasMember(req.Members, name) && !seen[name] {
			ordered = append(ordered, name)
			seen[name] = true
		}
	}
	for _, m := range req.Members {
		if !seen[m.Name] {
			ordered = append(ordered, m.Name)
			seen[m.Name] = true
		}
	}
	return ordered
}

func hasMember(members []MemberSource, name string) bool {
	for _, m := range members {
		if m.Name == name {
			return true
		}
	}
	return false
}

// checkSelfOverwrite detects target resolving (via symlink/hardlink) to
// the currently-open input file, per spec.md section 4.1 step 2.
func (p *Package) checkSelfOverwrite(target string) error {
	targetInfo, err := os.Stat(target)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.Environmental, err, "checking target %s", target)
	}
	inputPath := p.path
	inputInfo, err := os.Stat(inputPath)
	if err != nil {
		return nil
	}
	if os.SameFile(targetInfo, inputInfo) {
		return errors.New(errors.Conflict, "target %s is the currently open input; refusing to overwrite in place", target)
	}
	return nil
}

func writeDirectory(req WriteRequest, manifest []byte) error {
	destDir := filepath.Dir(req.TargetPath)
	if err := writeFileAtomic(req.TargetPath, req.DescriptorBytes); err != nil {
		return err
	}
	if req.ManifestName != "" {
		if err := writeFileAtomic(filepath.Join(destDir, req.ManifestName), manifest); err != nil {
			return err
		}
	}
	for _, m := range req.Members {
		data, err := memberBytes(m)
		if err != nil {
			return err
		}
		if err := writeFileAtomic(filepath.Join(destDir, m.Name), data); err != nil {
			return err
		}
	}
	return nil
}

func memberBytes(m MemberSource) ([]byte, error) {
	if m.Bytes != nil {
		return m.Bytes, nil
	}
	data, err := os.ReadFile(m.SourcePath)
	if err != nil {
		return nil, errors.Wrap(errors.Environmental, err, "reading %s", m.SourcePath)
	}
	return data, nil
}

// writeFileAtomic writes data to a sibling temp file and renames it over
// path, so a crash or interrupted write never leaves path half-written.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, ".cot-"+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.Environmental, err, "writing %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.Environmental, err, "renaming into place %s", path)
	}
	return nil
}

func writeTAR(req WriteRequest, manifest []byte, memberNames []string) error {
	dir := filepath.Dir(req.TargetPath)
	tmpPath := filepath.Join(dir, ".cot-"+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(errors.Environmental, err, "creating %s", tmpPath)
	}

	tw := tar.NewWriter(f)
	writeErr := func() error {
		if err := tarWriteEntry(tw, req.DescriptorName, req.DescriptorBytes); err != nil {
			return err
		}
		if req.ManifestName != "" {
			if err := tarWriteEntry(tw, req.ManifestName, manifest); err != nil {
				return err
			}
		}
		for _, name := range memberNames {
			m := findMember(req.Members, name)
			data, err := memberBytes(m)
			if err != nil {
				return err
			}
			if err := tarWriteEntry(tw, name, data); err != nil {
				return err
			}
		}
		return nil
	}()
	closeErr := tw.Close()
	fCloseErr := f.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.Environmental, closeErr, "finalizing TAR %s", tmpPath)
	}
	if fCloseErr != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.Environmental, fCloseErr, "closing %s", tmpPath)
	}
	if err := os.Rename(tmpPath, req.TargetPath); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.Environmental, err, "renaming into place %s", req.TargetPath)
	}
	return nil
}

func findMember(members []MemberSource, name string) MemberSource {
	for _, m := range members {
		if m.Name == name {
			return m
		}
	}
	return MemberSource{}
}

func tarWriteEntry(tw *tar.Writer, name string, data []byte) error {
	header := &tar.Header{Name: name, Size: int64(len(data)), Mode: 0o644}
	if err := tw.WriteHeader(header); err != nil {
		return errors.Wrap(errors.Environmental, err, "writing TAR header for %s", name)
	}
	if _, err := tw.Write(data); err != nil {
		return errors.Wrap(errors.Environmental, err, "writing TAR body for %s", name)
	}
	return nil
}

// checkDiskSpace estimates required space (spec.md section 4.1 step 4:
// sum of member sizes for TAR, sum of new/changed file sizes for
// DIRECTORY - approximated here as every member's size, since
// distinguishing "changed" from "unchanged" would require diffing
// against the currently-open input and the savings are marginal for
// typical OVA sizes) and compares it to free space at the target,
// surfacing a human-readable warning via ConfirmSpace on shortfall.
func checkDiskSpace(req WriteRequest, manifest []byte, confirm func(required, available uint64) bool) error {
	var required uint64
	required += uint64(len(req.DescriptorBytes))
	required += uint64(len(manifest))
	for _, m := range req.Members {
		sz, err := m.size()
		if err != nil {
			return err
		}
		required += uint64(sz)
	}

	available, err := freeSpaceAt(filepath.Dir(req.TargetPath))
	if err != nil {
		// Free space cannot be determined on this filesystem; proceed
		// without the warning rather than blocking the write entirely.
		return nil
	}
	if required <= available {
		return nil
	}
	if confirm == nil || !confirm(required, available) {
		return errors.New(errors.Environmental,
			"insufficient disk space: need %s, have %s free",
			humanize.Bytes(required), humanize.Bytes(available))
	}
	return nil
}

func freeSpaceAt(dir string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

