package naming

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tkrejci/dfscore/internal/common"
	"github.com/tkrejci/dfscore/internal/namingapi"
	"github.com/tkrejci/dfscore/internal/rmi"
	"github.com/tkrejci/dfscore/internal/storageapi"
)

type fakeStorage struct {
	created map[string]bool
	deleted map[string]bool
	refuse  bool
}

func (f *fakeStorage) Create(p common.Path) (bool, error) {
	if f.refuse {
		return false, nil
	}
	if p.IsRoot() || f.created[p.String()] {
		return false, nil
	}
	f.created[p.String()] = true
	return true, nil
}

func (f *fakeStorage) Delete(p common.Path) (bool, error) {
	if p.IsRoot() {
		return false, nil
	}
	f.deleted[p.String()] = true
	delete(f.created, p.String())
	return true, nil
}

func startStorage(t *testing.T, impl storageapi.CommandServer) (data, control rmi.Proxy) {
	table, err := storageapi.NewCommandMethodTable(impl)
	require.NoError(t, err)

	l := rmi.NewListener(table)
	require.NoError(t, l.Start("127.0.0.1:0"))
	t.Cleanup(func() { l.Stop() })

	addr := l.Addr().String()
	return rmi.NewProxy(storageapi.DataInterfaceName, addr), rmi.NewProxy(storageapi.CommandInterfaceName, addr)
}

func mustPath(t *testing.T, s string) common.Path {
	p, err := common.New(s)
	require.NoError(t, err)
	return p
}

func TestCreateDirectoryThenFile(t *testing.T) {
	n := New()
	store := &fakeStorage{created: map[string]bool{}, deleted: map[string]bool{}}
	data, control := startStorage(t, store)
	_, err := n.Register(data, control, nil)
	require.NoError(t, err)

	docs := mustPath(t, "/docs")
	ok, err := n.CreateDirectory(docs)
	require.NoError(t, err)
	require.True(t, ok)

	isDir, err := n.IsDirectory(docs)
	require.NoError(t, err)
	require.True(t, isDir)

	readme := mustPath(t, "/docs/readme.txt")
	ok, err = n.CreateFile(readme)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, store.created[readme.String()])

	isDir, err = n.IsDirectory(readme)
	require.NoError(t, err)
	require.False(t, isDir)
}

func TestCreateFileWithoutParentIsNotFound(t *testing.T) {
	n := New()
	data, control := startStorage(t, &fakeStorage{created: map[string]bool{}, deleted: map[string]bool{}})
	_, err := n.Register(data, control, nil)
	require.NoError(t, err)

	_, err = n.CreateFile(mustPath(t, "/missing/file"))
	require.ErrorIs(t, err, rmi.ErrNotFound)
}

func TestCreateFileWithoutStorageFails(t *testing.T) {
	n := New()
	_, err := n.CreateFile(mustPath(t, "/a"))
	require.ErrorIs(t, err, rmi.ErrIO)
}

func TestCreateFileOnRootIsNoop(t *testing.T) {
	n := New()
	ok, err := n.CreateFile(common.Root())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListReturnsImmediateChildrenOnly(t *testing.T) {
	n := New()
	data, control := startStorage(t, &fakeStorage{created: map[string]bool{}, deleted: map[string]bool{}})
	_, err := n.Register(data, control, nil)
	require.NoError(t, err)

	_, err = n.CreateDirectory(mustPath(t, "/a"))
	require.NoError(t, err)
	_, err = n.CreateDirectory(mustPath(t, "/a/b"))
	require.NoError(t, err)
	_, err = n.CreateFile(mustPath(t, "/a/f.txt"))
	require.NoError(t, err)
	_, err = n.CreateFile(mustPath(t, "/a/b/nested.txt"))
	require.NoError(t, err)

	names, err := n.List(mustPath(t, "/a"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"b", "f.txt"}, names)
}

func TestDeleteFileRemovesFromStorageAndState(t *testing.T) {
	n := New()
	store := &fakeStorage{created: map[string]bool{}, deleted: map[string]bool{}}
	data, control := startStorage(t, store)
	_, err := n.Register(data, control, nil)
	require.NoError(t, err)

	f := mustPath(t, "/f.txt")
	_, err = n.CreateFile(f)
	require.NoError(t, err)

	ok, err := n.Delete(f)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, store.deleted[f.String()])

	_, err = n.GetStorage(f)
	require.ErrorIs(t, err, rmi.ErrNotFound)
}

func TestDeleteDirectoryPurgesDescendants(t *testing.T) {
	n := New()
	store := &fakeStorage{created: map[string]bool{}, deleted: map[string]bool{}}
	data, control := startStorage(t, store)
	_, err := n.Register(data, control, nil)
	require.NoError(t, err)

	_, err = n.CreateDirectory(mustPath(t, "/a"))
	require.NoError(t, err)
	_, err = n.CreateDirectory(mustPath(t, "/a/b"))
	require.NoError(t, err)
	f1 := mustPath(t, "/a/one.txt")
	f2 := mustPath(t, "/a/b/two.txt")
	_, err = n.CreateFile(f1)
	require.NoError(t, err)
	_, err = n.CreateFile(f2)
	require.NoError(t, err)

	ok, err := n.Delete(mustPath(t, "/a"))
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, store.deleted[f1.String()])
	require.True(t, store.deleted[f2.String()])

	_, err = n.IsDirectory(mustPath(t, "/a/b"))
	require.ErrorIs(t, err, rmi.ErrNotFound)
	_, err = n.IsDirectory(mustPath(t, "/a"))
	require.ErrorIs(t, err, rmi.ErrNotFound)
}

func TestDeleteRootIsNoop(t *testing.T) {
	n := New()
	ok, err := n.Delete(common.Root())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteUnknownPathIsNotFound(t *testing.T) {
	n := New()
	_, err := n.Delete(mustPath(t, "/nope"))
	require.ErrorIs(t, err, rmi.ErrNotFound)
}

func TestRegisterDetectsDuplicatesAndDoubleRegistration(t *testing.T) {
	n := New()
	data, control := startStorage(t, &fakeStorage{created: map[string]bool{}, deleted: map[string]bool{}})

	a := mustPath(t, "/x/a.txt")
	duplicates, err := n.Register(data, control, []common.Path{a})
	require.NoError(t, err)
	require.Empty(t, duplicates)

	isDir, err := n.IsDirectory(mustPath(t, "/x"))
	require.NoError(t, err)
	require.True(t, isDir)

	_, err = n.Register(data, control, nil)
	require.ErrorIs(t, err, namingapi.ErrAlreadyRegistered)

	data2, control2 := startStorage(t, &fakeStorage{created: map[string]bool{}, deleted: map[string]bool{}})
	duplicates, err = n.Register(data2, control2, []common.Path{a})
	require.NoError(t, err)
	require.Len(t, duplicates, 1)
	require.True(t, duplicates[0].Equal(a))
}

func TestCreateDirectoryRejectsExisting(t *testing.T) {
	n := New()
	a := mustPath(t, "/a")
	ok, err := n.CreateDirectory(a)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = n.CreateDirectory(a)
	require.NoError(t, err)
	require.False(t, ok)
}
