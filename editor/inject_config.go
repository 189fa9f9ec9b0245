package editor

import (
	"github.com/glennmatthews/cot/errors"
	"github.com/glennmatthews/cot/hardware"
	"github.com/glennmatthews/cot/platform"
)

// InjectConfigRequest carries the local bootstrap configuration file(s) to
// attach as a platform-appropriate disk (spec.md section 4.3.5's
// "inject-config": CD-ROM or hard-disk delivery, named per the target
// platform's convention). SecondaryConfigPath is used only by platforms
// with a SecondaryBootstrapFilename (e.g. IOS XRv's admin/line-card
// split); it is an error to supply one for a platform without it.
type InjectConfigRequest struct {
	PrimaryConfigPath   string
	SecondaryConfigPath string
	Profile             string
}

// InjectConfig attaches req's configuration file(s) as a new disk of the
// platform's BootstrapDiskType, under its conventional filename(s).
func (e *Editor) InjectConfig(req InjectConfigRequest) (*hardware.LogicalItem, error) {
	plat := e.Platform()
	if req.SecondaryConfigPath != "" && plat.SecondaryBootstrapFilename == "" {
		return nil, errors.New(errors.Capability, "%s does not support a secondary bootstrap configuration", plat.Name)
	}

	isCDROM := plat.BootstrapDiskType == platform.BootstrapCDROM
	item, err := e.AddDisk(AddDiskRequest{
		SourcePath: req.PrimaryConfigPath,
		Href:       plat.BootstrapFilename,
		IsCDROM:    isCDROM,
		Profile:    req.Profile,
	})
	if err != nil {
		return nil, err
	}

	if req.SecondaryConfigPath != "" {
		if _, err := e.AddDisk(AddDiskRequest{
			SourcePath: req.SecondaryConfigPath,
			Href:       plat.SecondaryBootstrapFilename,
			IsCDROM:    isCDROM,
			Profile:    req.Profile,
		}); err != nil {
			return nil, err
		}
	}

	return item, nil
}
