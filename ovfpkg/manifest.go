package ovfpkg

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"regexp"
	"strings"

	"github.com/glennmatthews/cot/errors"
)

// manifestLinePattern matches one "ALGO(filename)= hex" line, grounded on
// the format exporter.manifest_file_generator.go writes
// ("SHA1(%v)= %v\n").
var manifestLinePattern = regexp.MustCompile(`^(SHA1|SHA256)\(([^)]*)\)\s*=\s*([0-9a-fA-F]+)\s*$`)

// ManifestEntry is one parsed line of a .mf manifest file.
type ManifestEntry struct {
	Algorithm string
	Filename  string
	Digest    string
}

// ParseManifest parses a manifest file's contents into its entries.
// Malformed lines are skipped rather than failing the whole parse - a
// manifest with one corrupt line should still let cot report mismatches
// for everything else, rather than refusing to look at the package at
// all.
func ParseManifest(data []byte) []ManifestEntry {
	var entries []ManifestEntry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := manifestLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		entries = append(entries, ManifestEntry{Algorithm: m[1], Filename: m[2], Digest: m[3]})
	}
	return entries
}

// Mismatch describes one manifest entry whose recorded digest does not
// match the member's current content.
type Mismatch struct {
	Filename string
	Expected string
	Actual   string
}

// VerifyManifest computes each manifest entry's digest over the member as
// currently stored in p and reports every mismatch. A manifest member
// entry naming a file p does not have is also reported, with Actual set
// to "" (spec.md section 4.1: verify_manifest reports, never fails).
func (p *Package) VerifyManifest(manifestMemberName string) ([]Mismatch, error) {
	data, err := p.ReadMember(manifestMemberName)
	if err != nil {
		return nil, err
	}
	var mismatches []Mismatch
	for _, entry := range ParseManifest(data) {
		actual, err := p.digestMember(entry.Filename, entry.Algorithm)
		if err != nil {
			mismatches = append(mismatches, Mismatch{Filename: entry.Filename, Expected: entry.Digest, Actual: ""})
			continue
		}
		if !strings.EqualFold(actual, entry.Digest) {
			mismatches = append(mismatches, Mismatch{Filename: entry.Filename, Expected: entry.Digest, Actual: actual})
		}
	}
	return mismatches, nil
}

func (p *Package) digestMember(name, algorithm string) (string, error) {
	data, err := p.ReadMember(name)
	if err != nil {
		return "", err
	}
	return digestBytes(data, algorithm)
}

func newHasher(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "SHA1":
		return sha1.New(), nil
	case "SHA256":
		return sha256.New(), nil
	default:
		return nil, errors.New(errors.InvalidInput, "unsupported manifest digest algorithm %q", algorithm)
	}
}

func digestBytes(data []byte, algorithm string) (string, error) {
	h, err := newHasher(algorithm)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// GenerateManifest computes a fresh manifest covering the descriptor
// (under descriptorName) and every member in members, using algorithm
// ("SHA1" or "SHA256", per the descriptor's ovf.Version.UsesSHA256).
// sourceBytes supplies the content to hash for each name - the caller
// (ovfpkg.Package.Write) already has every member's final bytes in hand
// from member_sources, so generation reads from there rather than back
// through the package being replaced.
func GenerateManifest(algorithm string, descriptorName string, members []string, sourceBytes func(name string) ([]byte, error)) ([]byte, error) {
	var b strings.Builder
	names := append([]string{descriptorName}, members...)
	for _, name := range names {
		data, err := sourceBytes(name)
		if err != nil {
			return nil, err
		}
		digest, err := digestBytes(data, algorithm)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%s(%s)= %s\n", algorithm, name, digest)
	}
	return []byte(b.String()), nil
}
