// Package namingapi defines the wire contract for the naming node's two
// interfaces — the client-facing service interface and the storage-facing
// registration interface — and the typed proxies and method tables that
// speak it over internal/rmi.
package namingapi

import (
	"fmt"

	"github.com/tkrejci/dfscore/internal/common"
	"github.com/tkrejci/dfscore/internal/rmi"
)

// ServiceInterfaceName identifies the naming node's client interface on
// the wire.
const ServiceInterfaceName = "dfscore.naming.Service"

// RegistrationInterfaceName identifies the naming node's storage
// registration interface on the wire.
const RegistrationInterfaceName = "dfscore.naming.Registration"

// DefaultServiceAddress and DefaultRegistrationAddress are the well-known
// loopback addresses storage nodes and clients construct bootstrap proxies
// against without discovery. A deployment is free to bind elsewhere and
// pass the chosen addresses explicitly; these constants exist only so the
// default configuration needs no coordination step.
const (
	DefaultServiceAddress      = "127.0.0.1:8090"
	DefaultRegistrationAddress = "127.0.0.1:8091"
)

// ErrAlreadyRegistered is raised by Register when data_proxy is already
// known to the naming node. It wraps rmi.ErrProgrammer so classification
// at the dispatch boundary assigns it the right Kind; callers on the far
// side of a Register call see rmi.ErrProgrammer, since only the fixed
// rmi.Kind taxonomy — not this sentinel's identity — survives the wire.
var ErrAlreadyRegistered = fmt.Errorf("namingapi: storage already registered: %w", rmi.ErrProgrammer)

// ServiceServer is implemented by the naming node to serve client metadata
// operations.
type ServiceServer interface {
	// IsDirectory reports whether p is a known directory (true) or file
	// (false). It fails with rmi.ErrNotFound if p is neither.
	IsDirectory(p common.Path) (bool, error)

	// List returns the immediate children (files and subdirectories, any
	// order, no duplicates) of directory p. It fails with rmi.ErrNotFound
	// if p is not a directory.
	List(p common.Path) ([]string, error)

	// CreateFile creates p as a file on exactly one chosen storage node.
	// It returns false (no error) if p is root or already exists, and
	// fails with rmi.ErrNotFound if p's parent directory is missing.
	CreateFile(p common.Path) (bool, error)

	// CreateDirectory adds p as a directory. It returns false (no error)
	// if p is root or already exists, and fails with rmi.ErrNotFound if
	// p's parent is missing.
	CreateDirectory(p common.Path) (bool, error)

	// Delete removes p from the namespace once every relevant storage
	// node confirms removal. It fails with rmi.ErrNotFound if p is
	// absent.
	Delete(p common.Path) (bool, error)

	// GetStorage returns a storage data proxy for file path p. It fails
	// with rmi.ErrNotFound if p is not a file.
	GetStorage(p common.Path) (rmi.Proxy, error)
}

// RegistrationServer is implemented by the naming node to serve storage
// node startup registration.
type RegistrationServer interface {
	// Register announces a storage node's data and control proxies and
	// the file paths found under its root. It returns the subset of
	// paths already known elsewhere (which the caller must delete
	// locally), and fails with ErrAlreadyRegistered if data is already
	// known.
	Register(data, control rmi.Proxy, paths []common.Path) ([]common.Path, error)
}
