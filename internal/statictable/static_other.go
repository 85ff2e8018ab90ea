//go:build !darwin

package statictable

// platformNodes is empty on non-macOS targets: the dot-files here exist
// purely for Finder/HFS+ integration and have no meaning under Linux's
// FUSE mount.
var platformNodes = []node{}
