// Package naming implements the authoritative directory tree and
// path-to-storage mapping for the naming node: the single coordinator a
// dfscore deployment uses to resolve client requests to storage nodes and
// to accept storage nodes' startup registration.
package naming

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/tkrejci/dfscore/internal/common"
	"github.com/tkrejci/dfscore/internal/logger"
	"github.com/tkrejci/dfscore/internal/namingapi"
	"github.com/tkrejci/dfscore/internal/rmi"
	"github.com/tkrejci/dfscore/internal/storageapi"
)

var (
	_ namingapi.ServiceServer      = (*Node)(nil)
	_ namingapi.RegistrationServer = (*Node)(nil)
)

// ErrNoStorageAvailable is returned by CreateFile when no storage node has
// registered yet. It classifies as rmi.ErrIO since it reflects the absence
// of a data plane to place the file on, not a caller mistake.
var ErrNoStorageAvailable = fmt.Errorf("naming: no storage node registered: %w", rmi.ErrIO)

// Node is the naming node's in-memory state: the directory tree, the set
// of known files, and the mapping from each file to the storage node
// holding it and every node replicating it. A single mutex serializes all
// operations; the state is small and every operation is O(namespace size)
// at worst, so coarse locking keeps the implementation free of the
// lock-ordering bugs a per-path lock scheme would invite.
type Node struct {
	log logger.Component

	mu sync.Mutex

	directories map[common.Path]struct{}
	files       map[common.Path]struct{}

	// primary maps a file to the storage data proxy GetStorage hands out
	// for it. It is always a member of replicas[path].
	primary map[common.Path]rmi.Proxy

	// replicas maps a file to every storage data proxy that holds a copy.
	// Both CreateFile and Register set it to the single proxy that placed
	// or announced the file; a path announced again by another storage
	// node is reported back as a duplicate rather than added here.
	replicas map[common.Path]map[rmi.Proxy]struct{}

	// storageCommand maps a storage node's data proxy to its command
	// proxy, the pair announced together at Register time.
	storageCommand map[rmi.Proxy]rmi.Proxy
}

// New builds an empty Node with nothing but the root directory.
func New() *Node {
	return &Node{
		log:            logger.Named("naming"),
		directories:    map[common.Path]struct{}{},
		files:          map[common.Path]struct{}{},
		primary:        map[common.Path]rmi.Proxy{},
		replicas:       map[common.Path]map[rmi.Proxy]struct{}{},
		storageCommand: map[rmi.Proxy]rmi.Proxy{},
	}
}

// IsDirectory reports whether p is known as a directory or a file.
func (n *Node) IsDirectory(p common.Path) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if p.IsRoot() {
		return true, nil
	}
	if _, ok := n.directories[p]; ok {
		return true, nil
	}
	if _, ok := n.files[p]; ok {
		return false, nil
	}
	return false, rmi.ErrNotFound
}

// List returns the immediate children of directory p.
func (n *Node) List(p common.Path) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !p.IsRoot() {
		if _, ok := n.directories[p]; !ok {
			return nil, rmi.ErrNotFound
		}
	}

	var names []string
	for d := range n.directories {
		if name, ok := immediateChild(p, d); ok {
			names = append(names, name)
		}
	}
	for f := range n.files {
		if name, ok := immediateChild(p, f); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func immediateChild(parent, candidate common.Path) (string, bool) {
	if !parent.StrictPrefixOf(candidate) {
		return "", false
	}
	actualParent, err := candidate.Parent()
	if err != nil || !actualParent.Equal(parent) {
		return "", false
	}
	name, err := candidate.Last()
	if err != nil {
		return "", false
	}
	return name, true
}

// CreateFile places a new, empty file at p on a storage node chosen at
// random from those currently registered.
func (n *Node) CreateFile(p common.Path) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if p.IsRoot() {
		return false, nil
	}
	if n.exists(p) {
		return false, nil
	}

	parent, err := p.Parent()
	if err != nil {
		return false, fmt.Errorf("naming: createFile %s: %w", p, rmi.ErrProgrammer)
	}
	if !n.dirExists(parent) {
		return false, rmi.ErrNotFound
	}
	if len(n.storageCommand) == 0 {
		return false, ErrNoStorageAvailable
	}

	data := n.pickStorage()
	control := n.storageCommand[data]

	ok, err := storageapi.WrapCommand(control).Create(p)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("naming: storage %s refused to create %s: %w", data, p, rmi.ErrIO)
	}

	n.files[p] = struct{}{}
	n.primary[p] = data
	n.replicas[p] = map[rmi.Proxy]struct{}{data: {}}
	return true, nil
}

func (n *Node) pickStorage() rmi.Proxy {
	proxies := make([]rmi.Proxy, 0, len(n.storageCommand))
	for p := range n.storageCommand {
		proxies = append(proxies, p)
	}
	return proxies[rand.Intn(len(proxies))]
}

// CreateDirectory adds p as an empty directory.
func (n *Node) CreateDirectory(p common.Path) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if p.IsRoot() {
		return false, nil
	}
	if n.exists(p) {
		return false, nil
	}

	parent, err := p.Parent()
	if err != nil {
		return false, fmt.Errorf("naming: createDirectory %s: %w", p, rmi.ErrProgrammer)
	}
	if !n.dirExists(parent) {
		return false, rmi.ErrNotFound
	}

	n.directories[p] = struct{}{}
	return true, nil
}

func (n *Node) exists(p common.Path) bool {
	_, isDir := n.directories[p]
	_, isFile := n.files[p]
	return isDir || isFile
}

// dirExists reports whether p is usable as a parent directory: the root
// always is, even though it has no entry in the directories set.
func (n *Node) dirExists(p common.Path) bool {
	if p.IsRoot() {
		return true
	}
	_, ok := n.directories[p]
	return ok
}

// Delete removes a file or directory, and every descendant of a deleted
// directory, once every storage node holding a copy confirms removal.
func (n *Node) Delete(p common.Path) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if p.IsRoot() {
		return false, nil
	}

	if _, ok := n.files[p]; ok {
		return n.deleteFile(p)
	}
	if _, ok := n.directories[p]; ok {
		return n.deleteDirectory(p)
	}
	return false, rmi.ErrNotFound
}

func (n *Node) deleteFile(p common.Path) (bool, error) {
	if !n.purgeFromStorage(p) {
		return false, nil
	}
	delete(n.files, p)
	delete(n.primary, p)
	delete(n.replicas, p)
	return true, nil
}

// purgeFromStorage asks every storage node replicating file f to delete it
// and reports whether all of them confirmed.
func (n *Node) purgeFromStorage(f common.Path) bool {
	ok := true
	for proxy := range n.replicas[f] {
		control, known := n.storageCommand[proxy]
		if !known {
			ok = false
			continue
		}
		deleted, err := storageapi.WrapCommand(control).Delete(f)
		if err != nil {
			n.log.Warn("delete %s on %s failed: %v", f, proxy, err)
			ok = false
			continue
		}
		if !deleted {
			ok = false
		}
	}
	return ok
}

// deleteDirectory removes every descendant file from storage, then purges
// the directory, its descendant directories, and its descendant files
// from the namespace in one step.
func (n *Node) deleteDirectory(p common.Path) (bool, error) {
	var descendantFiles, descendantDirs []common.Path
	for f := range n.files {
		if p.StrictPrefixOf(f) {
			descendantFiles = append(descendantFiles, f)
		}
	}
	for d := range n.directories {
		if p.StrictPrefixOf(d) {
			descendantDirs = append(descendantDirs, d)
		}
	}

	for _, f := range descendantFiles {
		if !n.purgeFromStorage(f) {
			return false, nil
		}
	}

	for _, f := range descendantFiles {
		delete(n.files, f)
		delete(n.primary, f)
		delete(n.replicas, f)
	}
	for _, d := range descendantDirs {
		delete(n.directories, d)
	}
	delete(n.directories, p)
	return true, nil
}

// GetStorage returns the data proxy clients should contact to read or
// write file p.
func (n *Node) GetStorage(p common.Path) (rmi.Proxy, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	proxy, ok := n.primary[p]
	if !ok {
		return rmi.Proxy{}, rmi.ErrNotFound
	}
	return proxy, nil
}

// Register records a newly started storage node's proxies and absorbs the
// files it already holds on local disk, implicitly creating any missing
// ancestor directories for them. Paths already known to the namespace are
// returned as duplicates for the caller to delete locally.
func (n *Node) Register(data, control rmi.Proxy, paths []common.Path) ([]common.Path, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if data.IsZero() || control.IsZero() {
		return nil, fmt.Errorf("naming: register: proxy is zero-valued: %w", rmi.ErrProgrammer)
	}
	if _, already := n.storageCommand[data]; already {
		return nil, namingapi.ErrAlreadyRegistered
	}

	n.storageCommand[data] = control

	var duplicates []common.Path
	for _, p := range paths {
		if p.IsRoot() {
			continue
		}
		if n.exists(p) {
			duplicates = append(duplicates, p)
			continue
		}

		n.ensureAncestors(p)
		n.files[p] = struct{}{}
		n.primary[p] = data
		n.replicas[p] = map[rmi.Proxy]struct{}{data: {}}
	}

	n.log.Info("registered storage %s (%d files, %d duplicates)", data, len(paths)-len(duplicates), len(duplicates))
	return duplicates, nil
}

func (n *Node) ensureAncestors(p common.Path) {
	components := p.Components()
	ancestor := common.Root()
	for _, name := range components[:len(components)-1] {
		next, err := ancestor.Join(name)
		if err != nil {
			return
		}
		n.directories[next] = struct{}{}
		ancestor = next
	}
}
