package ovfpkg

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestOVA(t *testing.T, path string, descriptor, diskContent []byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	tw := tar.NewWriter(f)
	defer tw.Close()

	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "box.ovf", Size: int64(len(descriptor)), Mode: 0o644}))
	_, err = tw.Write(descriptor)
	require.NoError(t, err)

	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "box-disk1.vmdk", Size: int64(len(diskContent)), Mode: 0o644}))
	_, err = tw.Write(diskContent)
	require.NoError(t, err)
}

func TestOpenDirectoryForm(t *testing.T) {
	dir := t.TempDir()
	descriptorPath := filepath.Join(dir, "box.ovf")
	require.NoError(t, os.WriteFile(descriptorPath, []byte("<Envelope/>"), 0o644))

	p, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, FormDirectory, p.Form())
	assert.Equal(t, "box.ovf", p.DescriptorName())
}

func TestOpenTARForm(t *testing.T) {
	dir := t.TempDir()
	ovaPath := filepath.Join(dir, "box.ova")
	writeTestOVA(t, ovaPath, []byte("<Envelope/>"), []byte("disk-bytes"))

	p, err := Open(ovaPath)
	require.NoError(t, err)
	assert.Equal(t, FormTAR, p.Form())
	assert.Equal(t, "box.ovf", p.DescriptorName())

	data, err := p.ReadMember("box-disk1.vmdk")
	require.NoError(t, err)
	assert.Equal(t, "disk-bytes", string(data))
}

func TestOpenTARNoDescriptorFails(t *testing.T) {
	dir := t.TempDir()
	ovaPath := filepath.Join(dir, "empty.ova")
	f, err := os.Create(ovaPath)
	require.NoError(t, err)
	tw := tar.NewWriter(f)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "readme.txt", Size: 4, Mode: 0o644}))
	_, _ = tw.Write([]byte("abcd"))
	tw.Close()
	f.Close()

	_, err = Open(ovaPath)
	assert.Error(t, err)
}

func TestGenerateAndParseManifest(t *testing.T) {
	dir := t.TempDir()
	ovaPath := filepath.Join(dir, "box.ova")
	writeTestOVA(t, ovaPath, []byte("<Envelope/>"), []byte("disk-bytes"))

	p, err := Open(ovaPath)
	require.NoError(t, err)

	manifest, err := GenerateManifest("SHA1", "box.ovf", []string{"box-disk1.vmdk"}, p.ReadMember)
	require.NoError(t, err)

	entries := ParseManifest(manifest)
	require.Len(t, entries, 2)
	assert.Equal(t, "box.ovf", entries[0].Filename)
	assert.Equal(t, "box-disk1.vmdk", entries[1].Filename)
}

func TestVerifyManifestDetectsMismatch(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "box.mf")
	descriptorPath := filepath.Join(dir, "box.ovf")
	require.NoError(t, os.WriteFile(descriptorPath, []byte("<Envelope/>"), 0o644))
	require.NoError(t, os.WriteFile(manifestPath, []byte("SHA1(box.ovf)= 0000000000000000000000000000000000000000\n"), 0o644))

	p, err := Open(descriptorPath)
	require.NoError(t, err)

	mismatches, err := p.VerifyManifest("box.mf")
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "box.ovf", mismatches[0].Filename)
}

func TestWriteDirectoryAtomic(t *testing.T) {
	srcDir := t.TempDir()
	descriptorPath := filepath.Join(srcDir, "box.ovf")
	require.NoError(t, os.WriteFile(descriptorPath, []byte("<Envelope/>"), 0o644))
	p, err := Open(descriptorPath)
	require.NoError(t, err)

	destDir := t.TempDir()
	req := WriteRequest{
		TargetPath:        filepath.Join(destDir, "out.ovf"),
		Form:               FormDirectory,
		DescriptorName:    "out.ovf",
		DescriptorBytes:   []byte("<Envelope edited=\"1\"/>"),
		Members:            []MemberSource{{Name: "disk.vmdk", Bytes: []byte("payload")}},
		ManifestName:       "out.mf",
		ManifestAlgorithm:  "SHA1",
	}
	require.NoError(t, p.Write(req))

	data, err := os.ReadFile(filepath.Join(destDir, "out.ovf"))
	require.NoError(t, err)
	assert.Equal(t, "<Envelope edited=\"1\"/>", string(data))

	_, err = os.ReadFile(filepath.Join(destDir, "disk.vmdk"))
	require.NoError(t, err)

	_, err = os.ReadFile(filepath.Join(destDir, "out.mf"))
	require.NoError(t, err)
}

func TestWriteRefusesSelfOverwrite(t *testing.T) {
	dir := t.TempDir()
	descriptorPath := filepath.Join(dir, "box.ovf")
	require.NoError(t, os.WriteFile(descriptorPath, []byte("<Envelope/>"), 0o644))
	p, err := Open(descriptorPath)
	require.NoError(t, err)

	req := WriteRequest{
		TargetPath:      descriptorPath,
		Form:            FormDirectory,
		DescriptorName:  "box.ovf",
		DescriptorBytes: []byte("<Envelope/>"),
	}
	err = p.Write(req)
	assert.Error(t, err)
}
