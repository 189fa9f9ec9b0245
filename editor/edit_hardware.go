package editor

import (
	"github.com/glennmatthews/cot/errors"
	"github.com/glennmatthews/cot/hardware"
	"github.com/glennmatthews/cot/ovf"
	"github.com/glennmatthews/cot/platform"
)

// EditHardwareRequest carries the fields "edit-hardware" may change; a nil
// pointer (or an empty NICNames) leaves the corresponding hardware
// unchanged.
type EditHardwareRequest struct {
	// Profile selects the target configuration profile; "" or the literal
	// "ALL" targets every profile in the descriptor's universe.
	Profile string

	CPUs     *int
	MemoryMB *int

	// NICCount grows or shrinks the NIC list. NICNameTemplate, if set,
	// names new NICs via its {N} sequence wildcard (spec.md section
	// 4.3.3); otherwise new NICs are named using the platform's
	// conventional naming sequence, extending it from the existing count.
	NICCount        *int
	NICNameTemplate string

	// NICNames reassigns NIC Connection values in InstanceID order,
	// per spec.md section 4.3.5's "set NIC network mapping".
	NICNames []string

	SerialCount *int

	// KeepOnlyProfile, if set, collapses the descriptor to the single named
	// configuration profile: every other profile is removed from
	// DeploymentOptionSection and every logical item's attribute maps are
	// restricted to it (spec.md section 4.3.5's "delete-all-other-profiles").
	// Mutually exclusive with every other field in practice, since the
	// resulting single-profile universe makes Profile/NICNames moot.
	KeepOnlyProfile string
}

// ResolveProfiles maps a --profile value onto a hardware.ProfileSet.
func (e *Editor) ResolveProfiles(profileFlag string) (hardware.ProfileSet, error) {
	engine := e.ensureEngine()
	if profileFlag == "" || profileFlag == "ALL" {
		return engine.Universe, nil
	}
	if !engine.Universe.Contains(profileFlag) {
		return nil, errors.New(errors.NotFound, "no configuration profile %q", profileFlag)
	}
	return hardware.NewProfileSet(profileFlag), nil
}

// EditHardware applies req to the VirtualHardwareSection, validating each
// changed quantity against the descriptor's platform and routing bounds
// violations through the session's confirmation callback (spec.md section
// 4.3.5: "Platform bounds violation emits a warning and continues unless
// --force is not set and no confirmation callback confirms").
func (e *Editor) EditHardware(req EditHardwareRequest) error {
	engine := e.ensureEngine()

	if req.KeepOnlyProfile != "" {
		return e.keepOnlyProfile(engine, req.KeepOnlyProfile)
	}

	profiles, err := e.ResolveProfiles(req.Profile)
	if err != nil {
		return err
	}
	plat := e.Platform()

	if req.CPUs != nil {
		if err := e.confirmWarning(plat.ValidateCPUCount(*req.CPUs)); err != nil {
			return err
		}
		if err := engine.SetCPUCount(profiles, *req.CPUs); err != nil {
			return err
		}
	}

	if req.MemoryMB != nil {
		if err := e.confirmWarning(plat.ValidateMemoryMB(*req.MemoryMB)); err != nil {
			return err
		}
		if err := engine.SetMemoryMB(profiles, *req.MemoryMB); err != nil {
			return err
		}
	}

	if req.NICCount != nil {
		if err := e.confirmWarning(plat.ValidateNICCount(*req.NICCount)); err != nil {
			return err
		}
		if err := e.setNICCount(engine, profiles, plat, *req.NICCount, req.NICNameTemplate); err != nil {
			return err
		}
	}

	if len(req.NICNames) > 0 {
		used, err := engine.SetNICNetworkMapping(req.NICNames)
		if err != nil {
			return err
		}
		if err := e.syncNetworks(used); err != nil {
			return err
		}
	}

	if req.SerialCount != nil {
		if err := e.confirmWarning(plat.ValidateSerialCount(*req.SerialCount)); err != nil {
			return err
		}
		if err := engine.SetSerialCount(profiles, *req.SerialCount); err != nil {
			return err
		}
	}

	return nil
}

// keepOnlyProfile implements "delete-all-other-profiles": every
// Configuration other than keep is dropped from DeploymentOptionSection,
// and the hardware engine's own profile-sets are restricted to match.
func (e *Editor) keepOnlyProfile(engine *hardware.Engine, keep string) error {
	if err := engine.DeleteAllOtherProfiles(keep); err != nil {
		return err
	}
	if !e.d.HasDeploymentOptionSection() {
		return nil
	}
	doSection := e.d.DeploymentOptionSection()
	for _, c := range doSection.Configurations() {
		if c.ID == keep {
			continue
		}
		if _, err := doSection.Remove(c.ID); err != nil {
			return err
		}
	}
	return nil
}

// confirmWarning turns a platform bounds check's result into either nil
// (validated clean), the validation error itself, or - for a non-fatal
// Warning - the session's confirmation decision.
func (e *Editor) confirmWarning(warning *platform.Warning, err error) error {
	if err != nil {
		return err
	}
	if warning == nil {
		return nil
	}
	if !e.sess.Warn(warning.Message) {
		return errors.New(errors.Conflict, "rejected: %s", warning.Message)
	}
	return nil
}

// setNICCount grows or shrinks the NIC list to count. An explicit
// nameTemplate uses the generic {N} sequence wildcard; otherwise new NICs
// are named per the platform's conventional sequence (spec.md section
// 4.3.5's NIC-naming heuristic), falling back to a single default Network
// when the platform has no naming convention.
func (e *Editor) setNICCount(engine *hardware.Engine, profiles hardware.ProfileSet, plat platform.Platform, count int, nameTemplate string) error {
	if nameTemplate != "" {
		if err := engine.SetNICCount(profiles, count, nameTemplate, hardware.NICDefaults{ResourceSubType: plat.DefaultNICType}); err != nil {
			return err
		}
		return e.reconcileNetworksFromNICs(engine)
	}

	current := engine.NICs()
	for len(current) < count {
		name := e.nextNICName(plat, len(current)+1)
		engine.AddNIC(profiles, name, hardware.NICDefaults{ResourceSubType: plat.DefaultNICType})
		if err := e.ensureNetwork(name); err != nil {
			return err
		}
		current = engine.NICs()
	}
	for len(current) > count {
		last := current[len(current)-1]
		if err := engine.RemoveNIC(last.InstanceID); err != nil {
			return err
		}
		current = current[:len(current)-1]
	}
	return nil
}

func (e *Editor) nextNICName(plat platform.Platform, nicNumber int) string {
	if plat.GuessNICName != nil {
		return plat.GuessNICName(nicNumber)
	}
	return "VM Network"
}

// reconcileNetworksFromNICs ensures every NIC's current Connection value
// has a matching Network entry - used after a wildcard-templated
// SetNICCount, whose generated names aren't run through ensureNetwork as
// they're created.
func (e *Editor) reconcileNetworksFromNICs(engine *hardware.Engine) error {
	for _, nic := range engine.NICs() {
		for p := range engine.Universe {
			if v, ok := nic.Get("Connection", p); ok {
				if err := e.ensureNetwork(v); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

func (e *Editor) ensureNetwork(name string) error {
	ns := e.d.NetworkSection()
	if _, exists := ns.NetworkByName(name); exists {
		return nil
	}
	return ns.Add(ovf.Network{Name: name})
}

// syncNetworks deletes every Network no NIC references any more and
// ensures one exists for every name still in use, per spec.md section
// 4.3.5's "set NIC network mapping": "Unused Networks ... are deleted."
func (e *Editor) syncNetworks(used []string) error {
	usedSet := make(map[string]bool, len(used))
	for _, n := range used {
		usedSet[n] = true
	}
	for _, n := range e.d.NetworkSection().Networks() {
		if !usedSet[n.Name] {
			_, _ = e.d.NetworkSection().Remove(n.Name)
		}
	}
	for name := range usedSet {
		if err := e.ensureNetwork(name); err != nil {
			return err
		}
	}
	return nil
}
