// Package editor implements the session-backed high-level edit
// operations: add-disk, add-file, remove-file, edit-hardware,
// edit-product, edit-properties, inject-config. Each operation ties
// together ovf.Descriptor's typed section handles, hardware.Engine's
// factorization algebra, platform.Platform's bounds, and
// session.Session's confirmation/logging plumbing, mirroring how
// cli_tools/gce_ovf_import/ovf_import_params.go stages one invocation's
// worth of state before a single import runs.
package editor

import (
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/glennmatthews/cot/hardware"
	"github.com/glennmatthews/cot/ovf"
	"github.com/glennmatthews/cot/ovfpkg"
	"github.com/glennmatthews/cot/platform"
	"github.com/glennmatthews/cot/session"
)

// Editor owns one open package plus its parsed descriptor for the
// duration of an edit session. Only one Editor should be active against a
// given package at a time; the core does not implement cross-process
// locking.
type Editor struct {
	sess *session.Session
	pkg  *ovfpkg.Package
	d    *ovf.Descriptor
	vs   *ovf.VirtualSystem

	itemTag    string
	rasdPrefix string

	engine *hardware.Engine

	// pendingMembers holds the local source for every file added or
	// replaced this session, keyed by its in-package href - Save reads
	// from here first, falling back to the currently-open package for
	// every href untouched this session.
	pendingMembers map[string]ovfpkg.MemberSource
}

// Open loads the package at path and parses its descriptor.
func Open(path string, sess *session.Session) (*Editor, error) {
	pkg, err := ovfpkg.Open(path)
	if err != nil {
		return nil, err
	}
	raw, err := pkg.ReadDescriptor()
	if err != nil {
		return nil, err
	}
	d, err := ovf.Parse(raw)
	if err != nil {
		return nil, err
	}
	vs, err := d.EnsureVirtualSystem("vm")
	if err != nil {
		return nil, err
	}
	return &Editor{
		sess:           sess,
		pkg:            pkg,
		d:              d,
		vs:             vs,
		itemTag:        qualifyTag(d.Prefix(), "Item"),
		rasdPrefix:     rasdPrefixOf(d.Envelope()),
		pendingMembers: map[string]ovfpkg.MemberSource{},
	}, nil
}

// Descriptor returns the parsed descriptor, for callers (e.g. the info
// command) that only need read access to the typed section handles.
func (e *Editor) Descriptor() *ovf.Descriptor { return e.d }

// VirtualSystem returns the descriptor's single VirtualSystem handle.
func (e *Editor) VirtualSystem() *ovf.VirtualSystem { return e.vs }

// Session returns the session this Editor was opened with.
func (e *Editor) Session() *session.Session { return e.sess }

// Platform resolves the descriptor's platform from its primary
// ProductSection's ovf:class attribute, falling back to the permissive
// generic platform when absent or unrecognized.
func (e *Editor) Platform() platform.Platform {
	if !e.vs.HasProductSection() {
		return platform.Generic
	}
	class := e.vs.ProductSection().Class()
	if class == nil {
		return platform.Generic
	}
	return platform.Lookup(*class)
}

// ensureEngine lazily ingests VirtualHardwareSection's Item children into
// a hardware.Engine, building the profile universe from
// DeploymentOptionSection (or the implicit DefaultProfile sentinel when no
// configuration profiles are declared at all).
func (e *Editor) ensureEngine() *hardware.Engine {
	if e.engine != nil {
		return e.engine
	}
	vhs := e.vs.VirtualHardwareSection()
	universe := e.profileUniverse()
	items := hardware.Ingest(vhs.SelectElements("Item"), universe)
	e.engine = hardware.NewEngine(items, universe)
	return e.engine
}

func (e *Editor) profileUniverse() hardware.ProfileSet {
	if !e.d.HasDeploymentOptionSection() {
		return hardware.UniverseFrom(nil)
	}
	configs := e.d.DeploymentOptionSection().Configurations()
	ids := make([]string, len(configs))
	for i, c := range configs {
		ids[i] = c.ID
	}
	return hardware.UniverseFrom(ids)
}

// syncEngine flushes the engine's LogicalItems back into
// VirtualHardwareSection as flat Item elements, replacing whatever was
// there before. A no-op if no hardware edit touched the engine this
// session.
func (e *Editor) syncEngine() {
	if e.engine == nil {
		return
	}
	vhs := e.vs.VirtualHardwareSection()
	for _, old := range vhs.SelectElements("Item") {
		vhs.RemoveChild(old)
	}
	items := hardware.SortByInstanceID(e.engine.Items)
	emitted := hardware.Emit(items, e.engine.Universe, hardware.EmitOptions{
		ItemTag:    e.itemTag,
		RASDPrefix: e.rasdPrefix,
	})
	for _, el := range emitted {
		vhs.AddChild(el)
	}
}

// Save serializes the descriptor (flushing any buffered hardware edits
// first) and writes the package out to targetPath in the given form,
// recomputing the manifest over the final bytes.
func (e *Editor) Save(targetPath string, form ovfpkg.Form) error {
	e.syncEngine()
	descriptorBytes, err := e.d.Serialize()
	if err != nil {
		return err
	}
	members, order, err := e.memberSources()
	if err != nil {
		return err
	}
	descriptorName, manifestName := e.outputNames(targetPath, form)
	algorithm := "SHA1"
	if e.d.Version().UsesSHA256() {
		algorithm = "SHA256"
	}
	req := ovfpkg.WriteRequest{
		TargetPath:        targetPath,
		Form:              form,
		DescriptorName:    descriptorName,
		DescriptorBytes:   descriptorBytes,
		Members:           members,
		ManifestName:      manifestName,
		ManifestAlgorithm: algorithm,
		ReferenceOrder:    order,
		ConfirmSpace: func(required, available uint64) bool {
			return e.sess.Warn("writing %s needs %d bytes but only %d are available", targetPath, required, available)
		},
	}
	return e.pkg.Write(req)
}

// memberSources builds the member list Save passes to ovfpkg.Package.Write,
// in descriptor References order: a pending (added/replaced) source takes
// priority, otherwise the member's current bytes are read back from the
// still-open input package.
func (e *Editor) memberSources() ([]ovfpkg.MemberSource, []string, error) {
	files := e.d.References().Files()
	order := make([]string, 0, len(files))
	members := make([]ovfpkg.MemberSource, 0, len(files))
	for _, f := range files {
		order = append(order, f.Href)
		if m, ok := e.pendingMembers[f.Href]; ok {
			members = append(members, m)
			continue
		}
		data, err := e.pkg.ReadMember(f.Href)
		if err != nil {
			return nil, nil, err
		}
		members = append(members, ovfpkg.MemberSource{Name: f.Href, Bytes: data})
	}
	return members, order, nil
}

// outputNames derives the descriptor and manifest member names from
// targetPath: for FormDirectory these are the target's own base name and
// its ".mf" sibling; for FormTAR they are the TAR entry names sharing the
// output file's base name.
func (e *Editor) outputNames(targetPath string, form ovfpkg.Form) (descriptorName, manifestName string) {
	base := strings.TrimSuffix(filepath.Base(targetPath), filepath.Ext(targetPath))
	if form == ovfpkg.FormDirectory {
		return filepath.Base(targetPath), base + ".mf"
	}
	return base + ".ovf", base + ".mf"
}

// Close releases the session's scratch workspace, if any.
func (e *Editor) Close() error {
	if e.sess == nil || e.sess.Workspace == nil {
		return nil
	}
	return e.sess.Workspace.Close()
}

func qualifyTag(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// rasdPrefixOf inspects envelope's xmlns declarations for the CIM RASD
// namespace and returns its bound prefix, "" if the namespace is declared
// as the default (unprefixed) namespace, and "rasd" as a last resort if
// the namespace is not declared at all - every sample descriptor in the
// corpus binds it, but a from-scratch descriptor has nothing to detect.
func rasdPrefixOf(envelope *etree.Element) string {
	for _, attr := range envelope.Attr {
		if attr.Space == "xmlns" && attr.Value == ovf.NSRASD {
			return attr.Key
		}
		if attr.Space == "" && attr.Key == "xmlns" && attr.Value == ovf.NSRASD {
			return ""
		}
	}
	return "rasd"
}
