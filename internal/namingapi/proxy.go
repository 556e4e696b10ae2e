package namingapi

import (
	"github.com/tkrejci/dfscore/internal/common"
	"github.com/tkrejci/dfscore/internal/rmi"
)

// ServiceProxy is the typed, caller-side view of the naming node's
// client-facing interface.
type ServiceProxy struct {
	proxy rmi.Proxy
}

// NewServiceProxy builds a ServiceProxy bound to a naming node's service
// interface at address.
func NewServiceProxy(address string) ServiceProxy {
	return ServiceProxy{proxy: rmi.NewProxy(ServiceInterfaceName, address)}
}

// WrapService adapts an already-constructed rmi.Proxy into a typed
// ServiceProxy.
func WrapService(p rmi.Proxy) ServiceProxy {
	return ServiceProxy{proxy: p}
}

// Proxy returns the underlying untyped proxy.
func (s ServiceProxy) Proxy() rmi.Proxy {
	return s.proxy
}

func (s ServiceProxy) IsDirectory(p common.Path) (bool, error) {
	reply, err := s.proxy.Call("isDirectory", []string{"path"}, []rmi.Value{rmi.StringValue(p.String())})
	if err != nil {
		return false, err
	}
	return reply.AsBool()
}

func (s ServiceProxy) List(p common.Path) ([]string, error) {
	reply, err := s.proxy.Call("list", []string{"path"}, []rmi.Value{rmi.StringValue(p.String())})
	if err != nil {
		return nil, err
	}
	return reply.AsStringSlice()
}

func (s ServiceProxy) CreateFile(p common.Path) (bool, error) {
	reply, err := s.proxy.Call("createFile", []string{"path"}, []rmi.Value{rmi.StringValue(p.String())})
	if err != nil {
		return false, err
	}
	return reply.AsBool()
}

func (s ServiceProxy) CreateDirectory(p common.Path) (bool, error) {
	reply, err := s.proxy.Call("createDirectory", []string{"path"}, []rmi.Value{rmi.StringValue(p.String())})
	if err != nil {
		return false, err
	}
	return reply.AsBool()
}

func (s ServiceProxy) Delete(p common.Path) (bool, error) {
	reply, err := s.proxy.Call("delete", []string{"path"}, []rmi.Value{rmi.StringValue(p.String())})
	if err != nil {
		return false, err
	}
	return reply.AsBool()
}

func (s ServiceProxy) GetStorage(p common.Path) (rmi.Proxy, error) {
	reply, err := s.proxy.Call("getStorage", []string{"path"}, []rmi.Value{rmi.StringValue(p.String())})
	if err != nil {
		return rmi.Proxy{}, err
	}
	return reply.AsProxy()
}

// RegistrationProxy is the typed, caller-side view of the naming node's
// storage registration interface. A storage node holds exactly one of
// these, built against the naming node's well-known registration address.
type RegistrationProxy struct {
	proxy rmi.Proxy
}

// NewRegistrationProxy builds a RegistrationProxy bound to a naming node's
// registration interface at address.
func NewRegistrationProxy(address string) RegistrationProxy {
	return RegistrationProxy{proxy: rmi.NewProxy(RegistrationInterfaceName, address)}
}

// WrapRegistration adapts an already-constructed rmi.Proxy into a typed
// RegistrationProxy.
func WrapRegistration(p rmi.Proxy) RegistrationProxy {
	return RegistrationProxy{proxy: p}
}

// Proxy returns the underlying untyped proxy.
func (r RegistrationProxy) Proxy() rmi.Proxy {
	return r.proxy
}

func (r RegistrationProxy) Register(data, control rmi.Proxy, paths []common.Path) ([]common.Path, error) {
	reply, err := r.proxy.Call("register", []string{"proxy", "proxy", "pathList"}, []rmi.Value{
		rmi.ProxyValue(data),
		rmi.ProxyValue(control),
		encodePaths(paths),
	})
	if err != nil {
		return nil, err
	}
	return decodePaths(reply)
}
