// Common OVF Tool: edits OVF/OVA virtual appliance packages in place.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/glennmatthews/cot/editor"
	"github.com/glennmatthews/cot/errors"
	"github.com/glennmatthews/cot/ovfpkg"
	"github.com/glennmatthews/cot/resources"
	"github.com/glennmatthews/cot/session"
)

// exit codes per spec.md section 6.
const (
	exitOK          = 0
	exitUserError   = 1
	exitEnvironment = 2
	exitInternal    = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitUserError
	}

	cmd, rest := args[0], args[1:]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return exitOK
	}

	commands := map[string]func(*session.Session, []string) error{
		"info":            runInfo,
		"add-disk":        runAddDisk,
		"add-file":        runAddFile,
		"remove-file":     runRemoveFile,
		"edit-hardware":   runEditHardware,
		"edit-product":    runEditProduct,
		"edit-properties": runEditProperties,
		"inject-config":   runInjectConfig,
	}
	handler, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "cot: unknown command %q\n", cmd)
		printUsage()
		return exitUserError
	}

	sess, filtered := newSessionFromArgs(rest)
	if err := handler(sess, filtered); err != nil {
		return reportError(sess, err)
	}
	return exitOK
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: cot <command> [flags] args...

commands:
  info             print a package's descriptor summary
  add-disk         attach a disk or CD-ROM to a package
  add-file         add or replace a referenced file
  remove-file      remove a referenced file
  edit-hardware    change CPU/memory/NIC/serial counts and mappings
  edit-product     set product metadata
  edit-properties  set environment properties
  inject-config    attach a platform bootstrap configuration

common flags: --force --quiet --verbose --debug --output PATH`)
}

// commonFlags are recognized by every subcommand in addition to its own.
type commonFlags struct {
	force   bool
	quiet   bool
	verbose bool
	debug   bool
	output  string
}

func bindCommonFlags(fs *flag.FlagSet, c *commonFlags) {
	fs.BoolVar(&c.force, "force", false, "auto-confirm every warning")
	fs.BoolVar(&c.quiet, "quiet", false, "suppress informational logging")
	fs.BoolVar(&c.verbose, "verbose", false, "enable verbose logging")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging (implies --verbose)")
	fs.StringVar(&c.output, "output", "", "output path; defaults to the input path")
}

// newSessionFromArgs scans args for the common flags ahead of a
// subcommand's own flag.FlagSet parse, since --output/--force etc. may
// appear anywhere on the line per spec.md section 6's "common flags"
// contract. It returns a Session built from what it found, plus args with
// those flags stripped for the subcommand's own parser.
func newSessionFromArgs(args []string) (*session.Session, []string) {
	c := &commonFlags{}
	var rest []string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--force":
			c.force = true
		case args[i] == "--quiet":
			c.quiet = true
		case args[i] == "--verbose":
			c.verbose = true
		case args[i] == "--debug":
			c.debug = true
			c.verbose = true
		case args[i] == "--output":
			if i+1 < len(args) {
				c.output = args[i+1]
				i++
			}
		case strings.HasPrefix(args[i], "--output="):
			c.output = strings.TrimPrefix(args[i], "--output=")
		default:
			rest = append(rest, args[i])
		}
	}

	logger := session.Logger(session.NopLogger{})
	if !c.quiet {
		logger = session.NewStdLogger("cot", c.verbose)
	}
	confirm := session.NeverConfirm
	if c.force {
		confirm = session.AlwaysConfirm
	} else {
		confirm = func(w session.Warning) bool {
			fmt.Fprintf(os.Stderr, "cot: warning: %s (pass --force to proceed)\n", w.Message)
			return false
		}
	}
	sess := session.New(logger, confirm, c.force)
	return sess, rest
}

func reportError(sess *session.Session, err error) int {
	sess.Logger.User("error: %v", err)
	cerr, ok := err.(*errors.Error)
	if !ok {
		return exitInternal
	}
	switch cerr.Kind() {
	case errors.InvalidInput, errors.NotFound, errors.Conflict:
		return exitUserError
	case errors.Capability, errors.Environmental, errors.Cancelled:
		return exitEnvironment
	default:
		return exitInternal
	}
}

// outputPathFor resolves --output against the opened package's own path,
// so an omitted --output edits the package in place.
func outputPathFor(output, inputPath string) string {
	if output != "" {
		return output
	}
	return inputPath
}

func formFor(path string) ovfpkg.Form {
	if strings.HasSuffix(strings.ToLower(path), ".ova") {
		return ovfpkg.FormTAR
	}
	return ovfpkg.FormDirectory
}

func openAndSave(sess *session.Session, fs *flag.FlagSet, outputFlag string, edit func(*editor.Editor) error) error {
	if fs.NArg() < 1 {
		return errors.New(errors.InvalidInput, "a package path is required")
	}
	path := fs.Arg(0)
	e, err := editor.Open(path, sess)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := edit(e); err != nil {
		return err
	}

	target := outputPathFor(outputFlag, path)
	return e.Save(target, formFor(target))
}

func runInfo(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	c := &commonFlags{}
	bindCommonFlags(fs, c)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.InvalidInput, err, "parsing flags")
	}
	if fs.NArg() < 1 {
		return errors.New(errors.InvalidInput, "a package path is required")
	}
	e, err := editor.Open(fs.Arg(0), sess)
	if err != nil {
		return err
	}
	defer e.Close()

	vs := e.VirtualSystem()
	name := "(unnamed)"
	if n := vs.Name(); n != nil {
		name = *n
	}
	fmt.Printf("VirtualSystem %s (%s)\n", vs.ID(), name)
	fmt.Printf("Platform: %s\n", e.Platform().Name)
	for _, f := range e.Descriptor().References().Files() {
		fmt.Printf("  File %s: %s (%d bytes)\n", f.ID, f.Href, f.Size)
	}
	for _, d := range e.Descriptor().DiskSection().Disks() {
		fmt.Printf("  Disk %s: capacity %s\n", d.DiskID, d.Capacity)
	}
	for _, n := range e.Descriptor().NetworkSection().Networks() {
		fmt.Printf("  Network %s\n", n.Name)
	}
	return nil
}

func runAddDisk(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("add-disk", flag.ContinueOnError)
	c := &commonFlags{}
	bindCommonFlags(fs, c)
	href := fs.String("href", "", "href to register the new file under")
	fileID := fs.String("file-id", "", "file id; auto-assigned if omitted")
	diskID := fs.String("disk-id", "", "disk id; auto-assigned if omitted")
	capacity := fs.String("capacity", "", "disk capacity")
	capacityUnits := fs.String("capacity-units", "", "disk capacity allocation units")
	format := fs.String("format", "", "disk format URI")
	cdrom := fs.Bool("cdrom", false, "attach as a CD-ROM drive instead of a hard disk")
	controllerID := fs.String("controller-instance-id", "", "attach to this controller's InstanceID")
	controllerType := fs.String("controller-type", "", "attach to the first controller of this type (ide/scsi/sata)")
	address := fs.Int("address", -1, "AddressOnParent; first unused address if omitted")
	profile := fs.String("profile", "", "configuration profile to scope the new item to")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.InvalidInput, err, "parsing flags")
	}
	if fs.NArg() < 2 {
		return errors.New(errors.InvalidInput, "usage: cot add-disk PACKAGE SOURCE_PATH --href HREF")
	}
	sourcePath := fs.Arg(1)
	if *href == "" {
		return errors.New(errors.InvalidInput, "--href is required")
	}

	return openAndSave(sess, fs, c.output, func(e *editor.Editor) error {
		info, err := os.Stat(sourcePath)
		if err != nil {
			return errors.Wrap(errors.Environmental, err, "stat %s", sourcePath)
		}
		req := editor.AddDiskRequest{
			SourcePath:           sourcePath,
			Href:                 *href,
			FileID:               *fileID,
			Size:                 uint64(info.Size()),
			DiskID:               *diskID,
			Capacity:             *capacity,
			CapacityUnits:        *capacityUnits,
			Format:               *format,
			IsCDROM:              *cdrom,
			ControllerInstanceID: *controllerID,
			ControllerType:       *controllerType,
			Profile:              *profile,
		}
		if *address >= 0 {
			req.Address = address
		}
		_, err = e.AddDisk(req)
		return err
	})
}

func runAddFile(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("add-file", flag.ContinueOnError)
	c := &commonFlags{}
	bindCommonFlags(fs, c)
	href := fs.String("href", "", "href to register the new file under")
	fileID := fs.String("file-id", "", "file id; auto-assigned if omitted")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.InvalidInput, err, "parsing flags")
	}
	if fs.NArg() < 2 {
		return errors.New(errors.InvalidInput, "usage: cot add-file PACKAGE SOURCE_PATH --href HREF")
	}
	sourcePath := fs.Arg(1)
	if *href == "" {
		return errors.New(errors.InvalidInput, "--href is required")
	}
	id := *fileID
	if id == "" {
		id = *href
	}

	return openAndSave(sess, fs, c.output, func(e *editor.Editor) error {
		info, err := os.Stat(sourcePath)
		if err != nil {
			return errors.Wrap(errors.Environmental, err, "stat %s", sourcePath)
		}
		return e.AddFile(editor.AddFileRequest{
			ID:         id,
			Href:       *href,
			SourcePath: sourcePath,
			Size:       uint64(info.Size()),
		})
	})
}

func runRemoveFile(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("remove-file", flag.ContinueOnError)
	c := &commonFlags{}
	bindCommonFlags(fs, c)
	fileID := fs.String("file-id", "", "file id to remove")
	href := fs.String("href", "", "href to remove")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.InvalidInput, err, "parsing flags")
	}
	if *fileID == "" && *href == "" && fs.NArg() >= 2 {
		positional := fs.Arg(1)
		href = &positional
	}

	return openAndSave(sess, fs, c.output, func(e *editor.Editor) error {
		_, err := e.RemoveFile(*fileID, *href)
		return err
	})
}

func runEditHardware(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("edit-hardware", flag.ContinueOnError)
	c := &commonFlags{}
	bindCommonFlags(fs, c)
	profile := fs.String("profile", "", "configuration profile to edit; ALL by default")
	cpus := fs.Int("cpus", -1, "set CPU count")
	memoryMB := fs.Int("memory-mb", -1, "set RAM in megabytes")
	nicCount := fs.Int("nic-count", -1, "set NIC count")
	nicNameTemplate := fs.String("nic-name-template", "", "{N} sequence template for newly-added NIC names")
	nicNetworks := fs.String("nic-networks", "", "comma-separated network names to assign to NICs in order")
	serialCount := fs.Int("serial-count", -1, "set serial port count")
	keepOnlyProfile := fs.String("keep-only-profile", "", "delete every configuration profile except this one")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.InvalidInput, err, "parsing flags")
	}

	return openAndSave(sess, fs, c.output, func(e *editor.Editor) error {
		req := editor.EditHardwareRequest{Profile: *profile, NICNameTemplate: *nicNameTemplate, KeepOnlyProfile: *keepOnlyProfile}
		if *cpus >= 0 {
			req.CPUs = cpus
		}
		if *memoryMB >= 0 {
			req.MemoryMB = memoryMB
		}
		if *nicCount >= 0 {
			req.NICCount = nicCount
		}
		if *serialCount >= 0 {
			req.SerialCount = serialCount
		}
		if *nicNetworks != "" {
			req.NICNames = strings.Split(*nicNetworks, ",")
		}
		return e.EditHardware(req)
	})
}

func runEditProduct(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("edit-product", flag.ContinueOnError)
	c := &commonFlags{}
	bindCommonFlags(fs, c)
	product := fs.String("product", "", "set Product")
	vendor := fs.String("vendor", "", "set Vendor")
	version := fs.String("version", "", "set Version")
	fullVersion := fs.String("full-version", "", "set FullVersion")
	productClass := fs.String("product-class", "", "set ProductSection ovf:class")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.InvalidInput, err, "parsing flags")
	}

	return openAndSave(sess, fs, c.output, func(e *editor.Editor) error {
		req := resources.EditProductRequest{}
		if *product != "" {
			req.Product = product
		}
		if *vendor != "" {
			req.Vendor = vendor
		}
		if *version != "" {
			req.Version = version
		}
		if *fullVersion != "" {
			req.FullVersion = fullVersion
		}
		if *productClass != "" {
			req.ProductClass = productClass
		}
		e.EditProduct(req)
		return nil
	})
}

// propertyFlags collects repeated -p key=value[+type] flags.
type propertyFlags []string

func (p *propertyFlags) String() string     { return strings.Join(*p, ",") }
func (p *propertyFlags) Set(v string) error { *p = append(*p, v); return nil }

func runEditProperties(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("edit-properties", flag.ContinueOnError)
	c := &commonFlags{}
	bindCommonFlags(fs, c)
	var props propertyFlags
	fs.Var(&props, "p", "key=value[+type] property edit; may be repeated")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.InvalidInput, err, "parsing flags")
	}
	if len(props) == 0 {
		return errors.New(errors.InvalidInput, "at least one -p key=value is required")
	}

	return openAndSave(sess, fs, c.output, func(e *editor.Editor) error {
		edits := make([]editor.PropertyEdit, len(props))
		for i, raw := range props {
			edits[i] = editor.ParsePropertyEdit(raw)
		}
		return e.EditProperties(edits)
	})
}

func runInjectConfig(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("inject-config", flag.ContinueOnError)
	c := &commonFlags{}
	bindCommonFlags(fs, c)
	secondary := fs.String("secondary-config", "", "secondary bootstrap configuration path, for platforms that support one")
	profile := fs.String("profile", "", "configuration profile to scope the new disk to")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errors.InvalidInput, err, "parsing flags")
	}
	if fs.NArg() < 2 {
		return errors.New(errors.InvalidInput, "usage: cot inject-config PACKAGE CONFIG_PATH")
	}
	primary := fs.Arg(1)

	return openAndSave(sess, fs, c.output, func(e *editor.Editor) error {
		_, err := e.InjectConfig(editor.InjectConfigRequest{
			PrimaryConfigPath:   primary,
			SecondaryConfigPath: *secondary,
			Profile:             *profile,
		})
		return err
	})
}
