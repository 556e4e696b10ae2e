package storageapi

import (
	"fmt"

	"github.com/tkrejci/dfscore/internal/common"
	"github.com/tkrejci/dfscore/internal/rmi"
)

func decodePath(args []rmi.Value, index int) (common.Path, error) {
	s, err := args[index].AsString()
	if err != nil {
		return common.Path{}, fmt.Errorf("storageapi: decode path argument: %w", rmi.ErrProgrammer)
	}
	p, err := common.New(s)
	if err != nil {
		return common.Path{}, fmt.Errorf("storageapi: %v: %w", err, rmi.ErrProgrammer)
	}
	return p, nil
}

// NewDataMethodTable builds the dispatch table a storage node's data
// listener binds to impl.
func NewDataMethodTable(impl DataServer) (*rmi.MethodTable, error) {
	specs := []rmi.MethodSpec{
		{
			Name:       "size",
			ParamTypes: []string{"path"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				p, err := decodePath(args, 0)
				if err != nil {
					return rmi.Value{}, err
				}
				size, err := impl.Size(p)
				if err != nil {
					return rmi.Value{}, err
				}
				return rmi.IntValue(size), nil
			},
		},
		{
			Name:       "read",
			ParamTypes: []string{"path", "int", "int"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				p, err := decodePath(args, 0)
				if err != nil {
					return rmi.Value{}, err
				}
				offset, err := args[1].AsInt()
				if err != nil {
					return rmi.Value{}, fmt.Errorf("storageapi: decode offset: %w", rmi.ErrProgrammer)
				}
				length, err := args[2].AsInt()
				if err != nil {
					return rmi.Value{}, fmt.Errorf("storageapi: decode length: %w", rmi.ErrProgrammer)
				}
				data, err := impl.Read(p, offset, length)
				if err != nil {
					return rmi.Value{}, err
				}
				return rmi.BytesValue(data), nil
			},
		},
		{
			Name:       "write",
			ParamTypes: []string{"path", "int", "bytes"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				p, err := decodePath(args, 0)
				if err != nil {
					return rmi.Value{}, err
				}
				offset, err := args[1].AsInt()
				if err != nil {
					return rmi.Value{}, fmt.Errorf("storageapi: decode offset: %w", rmi.ErrProgrammer)
				}
				data, err := args[2].AsBytes()
				if err != nil {
					return rmi.Value{}, fmt.Errorf("storageapi: decode data: %w", rmi.ErrProgrammer)
				}
				if err := impl.Write(p, offset, data); err != nil {
					return rmi.Value{}, err
				}
				return rmi.NilValue(), nil
			},
		},
	}

	return rmi.NewMethodTable(DataInterfaceName, specs)
}

// NewCommandMethodTable builds the dispatch table a storage node's command
// listener binds to impl.
func NewCommandMethodTable(impl CommandServer) (*rmi.MethodTable, error) {
	specs := []rmi.MethodSpec{
		{
			Name:       "create",
			ParamTypes: []string{"path"},
			Handle: func(args []rmi.Value) (rmi.Value, error) {
				p, err := decodePath(args, 0)
				if err != nil {
					return rmi.Value{}, err
				}
				ok, err := impl.Create(p)
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
	}

	return rmi.NewMethodTable(CommandInterfaceName, specs)
}
