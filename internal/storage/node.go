// Package storage implements a storage node: local-filesystem-backed file
// data and the namespace mutation operations the naming node invokes on
// its behalf.
package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tkrejci/dfscore/internal/common"
	"github.com/tkrejci/dfscore/internal/logger"
	"github.com/tkrejci/dfscore/internal/rmi"
	"github.com/tkrejci/dfscore/internal/storageapi"
)

var (
	_ storageapi.DataServer    = (*Node)(nil)
	_ storageapi.CommandServer = (*Node)(nil)
)

// Node serves file data and namespace mutations out of a directory on the
// local filesystem. A single mutex serializes every operation, matching
// the one-thread-at-a-time contract the naming node's sequential delete
// and create calls assume.
type Node struct {
	log  logger.Component
	root string

	mu sync.Mutex
}

// New builds a Node rooted at root, which must already exist as a
// directory.
func New(root string) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("storage: root directory %s: %w", root, rmi.ErrNotFound)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root %s is not a directory: %w", root, rmi.ErrProgrammer)
	}
	return &Node{log: logger.Named("storage"), root: root}, nil
}

func (n *Node) localPath(p common.Path) string {
	return filepath.Join(n.root, filepath.Join(p.Components()...))
}

// Size returns the byte length of file p.
func (n *Node) Size(p common.Path) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	info, err := os.Stat(n.localPath(p))
	if err != nil {
		return 0, rmi.ErrNotFound
	}
	if info.IsDir() {
		return 0, rmi.ErrNotFound
	}
	return info.Size(), nil
}

// Read returns length bytes of file p starting at offset.
func (n *Node) Read(p common.Path, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, rmi.ErrBounds
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	local := n.localPath(p)
	info, err := os.Stat(local)
	if err != nil {
		return nil, rmi.ErrNotFound
	}
	if info.IsDir() {
		return nil, rmi.ErrNotFound
	}
	if offset+length > info.Size() {
		return nil, rmi.ErrBounds
	}

	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", p, rmi.ErrIO)
	}
	defer f.Close()

	buf := make([]byte, length)
	read := 0
	for read < len(buf) {
		m, err := f.ReadAt(buf[read:], offset+int64(read))
		read += m
		if err != nil {
			break
		}
	}
	if int64(read) < length {
		return nil, rmi.ErrBounds
	}
	return buf, nil
}

// Write writes data into file p starting at offset. An empty write is a
// no-op, even against a nonexistent file.
func (n *Node) Write(p common.Path, offset int64, data []byte) error {
	if offset < 0 {
		return rmi.ErrBounds
	}
	if len(data) == 0 {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	local := n.localPath(p)
	info, err := os.Stat(local)
	if err != nil {
		return rmi.ErrNotFound
	}
	if info.IsDir() {
		return rmi.ErrNotFound
	}

	f, err := os.OpenFile(local, os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("storage: open %s for write: %w", p, rmi.ErrIO)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, offset); err != nil {
		return fmt.Errorf("storage: write %s: %w", p, rmi.ErrIO)
	}
	return nil
}

// Create creates an empty file at p, making any missing parent
// directories. A file in the way of a needed parent directory is removed
// first, matching the naming node's assumption that create always
// succeeds once it has chosen this node.
func (n *Node) Create(p common.Path) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if p.IsRoot() {
		return false, nil
	}

	local := n.localPath(p)
	if _, err := os.Stat(local); err == nil {
		return false, nil
	}

	parent := filepath.Dir(local)
	components := p.Components()
	ancestor := n.root
	for _, name := range components[:len(components)-1] {
		ancestor = filepath.Join(ancestor, name)
		if info, err := os.Stat(ancestor); err == nil && !info.IsDir() {
			if err := os.Remove(ancestor); err != nil {
				return false, fmt.Errorf("storage: clearing %s for create: %w", p, rmi.ErrIO)
			}
			break
		}
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return false, fmt.Errorf("storage: mkdir for %s: %w", p, rmi.ErrIO)
	}

	f, err := os.OpenFile(local, os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return false, nil
	}
	f.Close()
	return true, nil
}

// Delete removes the file or directory at path, recursively for a
// directory. The root is never deletable.
func (n *Node) Delete(path common.Path) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if path.IsRoot() {
		return false, nil
	}

	local := n.localPath(path)
	info, err := os.Lstat(local)
	if err != nil {
		return false, nil
	}
	if !info.IsDir() {
		return os.Remove(local) == nil, nil
	}
	return recursiveDelete(local), nil
}

func recursiveDelete(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return false
		}
		for _, e := range entries {
			if !recursiveDelete(filepath.Join(path, e.Name())) {
				return false
			}
		}
	}
	return os.Remove(path) == nil
}

// LocalFiles walks root and returns every regular file as a Path relative
// to it, for announcing to the naming node at startup.
func (n *Node) LocalFiles() ([]common.Path, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var paths []common.Path
	err := filepath.WalkDir(n.root, func(walked string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(n.root, walked)
		if err != nil {
			return err
		}
		p, err := common.New("/" + filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: enumerating %s: %w", n.root, rmi.ErrIO)
	}
	return paths, nil
}

// PruneEmptyDirectories removes every directory under root that is (now,
// or becomes through this pruning) empty, leaving root itself intact.
func (n *Node) PruneEmptyDirectories() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := pruneRecursively(n.root, false); err != nil {
		return fmt.Errorf("storage: pruning %s: %w", n.root, rmi.ErrIO)
	}
	return nil
}

func pruneRecursively(dir string, removableIfEmpty bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := pruneRecursively(filepath.Join(dir, e.Name()), true); err != nil {
			return err
		}
	}
	if removableIfEmpty {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return os.Remove(dir)
		}
	}
	return nil
}
