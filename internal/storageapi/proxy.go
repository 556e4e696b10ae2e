package storageapi

import (
	"github.com/tkrejci/dfscore/internal/common"
	"github.com/tkrejci/dfscore/internal/rmi"
)

// DataProxy is the typed, caller-side view of a storage node's data
// interface. It wraps a plain rmi.Proxy — the same value the naming node
// stores as a "storage reference" — with the method signatures in
// DataServer.
type DataProxy struct {
	proxy rmi.Proxy
}

// NewDataProxy builds a DataProxy bound to a storage node's data interface
// at address.
func NewDataProxy(address string) DataProxy {
	return DataProxy{proxy: rmi.NewProxy(DataInterfaceName, address)}
}

// WrapData adapts an already-constructed rmi.Proxy (e.g. one received from
// the naming node) into a typed DataProxy.
func WrapData(p rmi.Proxy) DataProxy {
	return DataProxy{proxy: p}
}

// Proxy returns the underlying untyped proxy, the form naming state keeps
// as a storage reference.
func (d DataProxy) Proxy() rmi.Proxy {
	return d.proxy
}

func (d DataProxy) Size(p common.Path) (int64, error) {
	reply, err := d.proxy.Call("size", []string{"path"}, []rmi.Value{rmi.StringValue(p.String())})
	if err != nil {
		return 0, err
	}
	return reply.AsInt()
}

func (d DataProxy) Read(p common.Path, offset, length int64) ([]byte, error) {
	reply, err := d.proxy.Call("read", []string{"path", "int", "int"}, []rmi.Value{
		rmi.StringValue(p.String()),
		rmi.IntValue(offset),
		rmi.IntValue(length),
	})
	if err != nil {
		return nil, err
	}
	return reply.AsBytes()
}

func (d DataProxy) Write(p common.Path, offset int64, data []byte) error {
	_, err := d.proxy.Call("write", []string{"path", "int", "bytes"}, []rmi.Value{
		rmi.StringValue(p.String()),
		rmi.IntValue(offset),
		rmi.BytesValue(data),
	})
	return err
}

// CommandProxy is the typed, caller-side view of a storage node's control
// interface.
type CommandProxy struct {
	proxy rmi.Proxy
}

// NewCommandProxy builds a CommandProxy bound to a storage node's command
// interface at address.
func NewCommandProxy(address string) CommandProxy {
	return CommandProxy{proxy: rmi.NewProxy(CommandInterfaceName, address)}
}

// WrapCommand adapts an already-constructed rmi.Proxy into a typed
// CommandProxy.
func WrapCommand(p rmi.Proxy) CommandProxy {
	return CommandProxy{proxy: p}
}

// Proxy returns the underlying untyped proxy, the form naming state keeps
// as a command reference.
func (c CommandProxy) Proxy() rmi.Proxy {
	return c.proxy
}

func (c CommandProxy) Create(p common.Path) (bool, error) {
	reply, err := c.proxy.Call("create", []string{"path"}, []rmi.Value{rmi.StringValue(p.String())})
	if err != nil {
		return false, err
	}
	return reply.AsBool()
}

func (c CommandProxy) Delete(p common.Path) (bool, error) {
	reply, err := c.proxy.Call("delete", []string{"path"}, []rmi.Value{rmi.StringValue(p.String())})
	if err != nil {
		return false, err
	}
	return reply.AsBool()
}
