// Package storageapi defines the wire contract for a storage node's two
// interfaces — data (size/read/write) and command (create/delete) — and
// the typed proxies and method tables that speak it over internal/rmi.
package storageapi

import "github.com/tkrejci/dfscore/internal/common"

// DataInterfaceName identifies the storage node's data-plane interface on
// the wire. Proxy equality and method-table binding both key off this
// string.
const DataInterfaceName = "dfscore.storage.Data"

// CommandInterfaceName identifies the storage node's control-plane
// interface on the wire.
const CommandInterfaceName = "dfscore.storage.Command"

// DataServer is implemented by a storage node to serve random-access file
// I/O. Every method is path-scoped and relative to the node's own root.
type DataServer interface {
	// Size returns the length in bytes of the file at p. It fails with
	// rmi.ErrNotFound if p does not exist or is a directory.
	Size(p common.Path) (int64, error)

	// Read returns exactly length bytes starting at offset. It fails with
	// rmi.ErrNotFound if p is absent or a directory, rmi.ErrBounds if the
	// range is invalid or would require a short read, and rmi.ErrIO on a
	// local filesystem error.
	Read(p common.Path, offset, length int64) ([]byte, error)

	// Write extends the file as needed to reach offset+len(data),
	// overwriting any existing bytes in that range. Empty data is a
	// no-op. It fails with rmi.ErrNotFound if p is a directory or absent,
	// rmi.ErrBounds if offset is negative.
	Write(p common.Path, offset int64, data []byte) error
}

// CommandServer is implemented by a storage node to serve namespace
// mutation under its local root.
type CommandServer interface {
	// Create makes an empty regular file at p, creating missing parent
	// directories. It returns false (no error) if p is root, already
	// exists, or could not be created.
	Create(p common.Path) (bool, error)

	// Delete removes p: an unlink for a file, a post-order recursive
	// removal for a directory. It returns false (no error) if removal did
	// not fully succeed. Root is never deletable.
	Delete(p common.Path) (bool, error)
}
