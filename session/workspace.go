package session

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace owns a scratch directory exclusively for the duration of one
// edit session, per spec.md section 5. It is removed on every exit path,
// including error, mirroring VMContextManager.__exit__'s
// shutil.rmtree(self.obj.working_dir) in original_source/COT.
type Workspace struct {
	dir string
}

// NewWorkspace creates a fresh scratch directory under parentDir (the OS
// temp dir if empty), named uniquely via a random UUID so concurrent
// sessions on the same host never collide - grounded on the teacher's
// build-ID-suffixed scratch path convention (cli_tools/gce_ovf_import's
// buildTmpGcsPath), adapted to the local filesystem.
func NewWorkspace(parentDir string) (*Workspace, error) {
	if parentDir == "" {
		parentDir = os.TempDir()
	}
	dir := filepath.Join(parentDir, "cot-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the scratch directory's path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins name onto the scratch directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Close removes the scratch directory and everything under it. Safe to
// call multiple times and on a nil Workspace.
func (w *Workspace) Close() error {
	if w == nil || w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	w.dir = ""
	return err
}
