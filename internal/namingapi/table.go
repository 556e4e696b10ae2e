package namingapi

import (
	"fmt"

	"github.com/tkrejci/dfscore/internal/common"
	"github.com/tkrejci/dfscore/internal/rmi"
)

func decodePath(args []rmi.Value, index int) (common.Path, error) {
	s, err := args[index].AsString()
	if err != nil {
		return common.Path{}, fmt.Errorf("namingapi: decode path argument: %w", rmi.ErrProgrammer)
	}
	p, err := common.New(s)
	if err != nil {
		return common.Path{}, fmt.Errorf("namingapi: %v: %w", err, rmi.ErrProgrammer)
	}
	return p, nil
}

func decodePaths(v rmi.Value) ([]common.Path, error) {
	strs, err := v.AsStringSlice()
	if err != nil {
		return nil, fmt.Errorf("namingapi: decode path list: %w", rmi.ErrProgrammer)
	}
	paths := make([]common.Path, len(strs))
	for i, s := range strs {
		p, err := common.New(s)
		if err != nil {
			return nil, fmt.Errorf("namingapi: %v: %w", err, rmi.ErrProgrammer)
		}
		paths[i] = p
	}
	return paths, nil
}

func encodePaths(paths []common.Path) rmi.Value {
	strs := make([]string, len(paths))
	for i, p := range paths {
		strs[i] = p.String()
	}
	return rmi.StringSliceValue(strs)
}

// NewServiceMethodTable builds the dispatch table the naming node's
// client-facing listener binds to impl.
func NewServiceMethodTable(impl ServiceServer) (*rmi.MethodTable, error) {
	specs := []rmi.MethodSpec{
		{
			Name:       "isDirectory",
			ParamTypes: []string{"path"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				p, err := decodePath(args, 0)
				if err != nil {
					return rmi.Value{}, err
				}
				ok, err := impl.IsDirectory(p)
				if err != nil {
					return rmi.Value{}, err
				}
				return rmi.BoolValue(ok), nil
			},
		},
		{
			Name:       "list",
			ParamTypes: []string{"path"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				p, err := decodePath(args, 0)
				if err != nil {
					return rmi.Value{}, err
				}
				names, err := impl.List(p)
				if err != nil {
					return rmi.Value{}, err
				}
				return rmi.StringSliceValue(names), nil
			},
		},
		{
			Name:       "createFile",
			ParamTypes: []string{"path"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				p, err := decodePath(args, 0)
				if err != nil {
					return rmi.Value{}, err
				}
				ok, err := impl.CreateFile(p)
				if err != nil {
					return rmi.Value{}, err
				}
				return rmi.BoolValue(ok), nil
			},
		},
		{
			Name:       "createDirectory",
			ParamTypes: []string{"path"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				p, err := decodePath(args, 0)
				if err != nil {
					return rmi.Value{}, err
				}
				ok, err := impl.CreateDirectory(p)
				if err != nil {
					return rmi.Value{}, err
				}
				return rmi.BoolValue(ok), nil
			},
		},
		{
			Name:       "delete",
			ParamTypes: []string{"path"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				p, err := decodePath(args, 0)
				if err != nil {
					return rmi.Value{}, err
				}
				ok, err := impl.Delete(p)
				if err != nil {
					return rmi.Value{}, err
				}
				return rmi.BoolValue(ok), nil
			},
		},
		{
			Name:       "getStorage",
			ParamTypes: []string{"path"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				p, err := decodePath(args, 0)
				if err != nil {
					return rmi.Value{}, err
				}
				proxy, err := impl.GetStorage(p)
				if err != nil {
					return rmi.Value{}, err
				}
				return rmi.ProxyValue(proxy), nil
			},
		},
	}

	return rmi.NewMethodTable(ServiceInterfaceName, specs)
}

// NewRegistrationMethodTable builds the dispatch table the naming node's
// registration listener binds to impl.
func NewRegistrationMethodTable(impl RegistrationServer) (*rmi.MethodTable, error) {
	specs := []rmi.MethodSpec{
		{
			Name:       "register",
			ParamTypes: []string{"proxy", "proxy", "pathList"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				data, err := args[0].AsProxy()
				if err != nil {
					return rmi.Value{}, fmt.Errorf("namingapi: decode data proxy: %w", rmi.ErrProgrammer)
				}
				control, err := args[1].AsProxy()
				if err != nil {
					return rmi.Value{}, fmt.Errorf("namingapi: decode control proxy: %w", rmi.ErrProgrammer)
				}
				paths, err := decodePaths(args[2])
				if err != nil {
					return rmi.Value{}, err
				}
				duplicates, err := impl.Register(data, control, paths)
				if err != nil {
					return rmi.Value{}, err
				}
				return encodePaths(duplicates), nil
			},
		},
	}

	return rmi.NewMethodTable(RegistrationInterfaceName, specs)
}
