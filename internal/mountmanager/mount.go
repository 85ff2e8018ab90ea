// Package mountmanager owns the background FUSE session lifecycle:
// mount/umount with idempotent release, mirroring spec §4.6.
package mountmanager

import (
	"log"
	"path/filepath"
	"sync"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/rmkfs/rmkfs/internal/rmkerr"
)

// Manager owns the mutex-protected session handle. Mount is not
// re-entrant: a second Mount without an intervening Umount fails with
// *rmkerr.MountError.
type Manager struct {
	mu         sync.Mutex
	conn       *fuse.Conn
	mountpoint string
}

// New returns an unmounted Manager.
func New() *Manager { return &Manager{} }

// Mount canonicalizes mountpoint, starts the FUSE session with the fixed
// option set from spec §4.6, and blocks the caller until the kernel
// reports the filesystem ready for dispatch (fs.Serve is started in its
// own goroutine by the caller; Mount only opens the connection).
//
// bazil.org/fuse has no single named "auto-unmount" mount option the way
// the Rust fuser crate does, and none is passed here. Umount (and the
// Close call in internal/cli's daemon teardown) is idempotent and safe to
// call unconditionally on teardown; a process that exits without reaching
// that teardown leaves the mount in place.
func (m *Manager) Mount(mountpoint string, fsName, volName string) (*fuse.Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		return nil, &rmkerr.MountError{Mountpoint: mountpoint, Cause: errAlreadyMounted}
	}

	abs, err := filepath.Abs(mountpoint)
	if err != nil {
		return nil, &rmkerr.MountError{Mountpoint: mountpoint, Cause: err}
	}

	conn, err := fuse.Mount(
		abs,
		fuse.FSName(fsName),
		fuse.Subtype(fsName),
		fuse.VolumeName(volName),
		fuse.LocalVolume(),
		fuse.ReadOnly(),
		fuse.AllowOther(),
	)
	if err != nil {
		return nil, &rmkerr.MountError{Mountpoint: abs, Cause: err}
	}

	m.conn = conn
	m.mountpoint = abs
	return conn, nil
}

// Serve drives the FUSE request loop on the mounted connection until the
// kernel tears it down or the filesystem returns from Serve.
func (m *Manager) Serve(filesystem fs.FS) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return &rmkerr.UmountError{}
	}
	return fs.Serve(conn, filesystem)
}

// Umount joins the session and releases it. A second Umount call (or one
// with no active session) is a no-op, never an error.
func (m *Manager) Umount() error {
	m.mu.Lock()
	conn := m.conn
	mountpoint := m.mountpoint
	m.conn = nil
	m.mountpoint = ""
	m.mu.Unlock()

	if conn == nil {
		return nil
	}

	if err := fuse.Unmount(mountpoint); err != nil {
		log.Printf("rmkfs: unmount %s failed: %v", mountpoint, err)
		return nil
	}
	return conn.Close()
}

// Close releases the session if still mounted, logging (not propagating)
// any failure — matching the teardown policy in spec §7 so process exit
// is never poisoned by a failed unmount.
func (m *Manager) Close() {
	if err := m.Umount(); err != nil {
		log.Printf("rmkfs: close: %v", err)
	}
}

var errAlreadyMounted = &alreadyMountedErr{}

type alreadyMountedErr struct{}

func (*alreadyMountedErr) Error() string { return "mount already active; call Umount first" }
