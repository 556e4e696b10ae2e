package rmi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// wireValue is the plain-struct shadow of Value that go-xdr can marshal by
// reflection. Every field is always present on the wire; only the one
// selected by Kind is meaningful. This wastes a few bytes per value in
// exchange for a codec with no hand-written per-kind encoding logic.
type wireValue struct {
	Kind    uint32
	Bool    bool
	Int     int64
	Str     string
	Bytes   []byte
	Strs    []string
	Proxy   wireProxy
	Array   []wireValue
	ErrKind uint32
	ErrMsg  string
}

type wireProxy struct {
	Interface string
	Address   string
}

type callEnvelope struct {
	Method     string
	Args       []wireValue
	ParamTypes []string
	CallID     string
}

func toWire(v Value) wireValue {
	w := wireValue{Kind: uint32(v.Kind)}
	switch v.Kind {
	case KindBool:
		w.Bool = v.boolVal
	case KindInt64:
		w.Int = v.intVal
	case KindString:
		w.Str = v.strVal
	case KindBytes:
		w.Bytes = v.bytesVal
	case KindStringSlice:
		w.Strs = v.strsVal
	case KindProxy:
		w.Proxy = wireProxy{Interface: v.proxyVal.interfaceName, Address: v.proxyVal.address}
	case KindArray:
		w.Array = toWireSlice(v.arrVal)
	case KindError:
		if v.errVal != nil {
			w.ErrKind = uint32(v.errVal.Kind)
			w.ErrMsg = v.errVal.Message
		}
	}
	return w
}

func fromWire(w wireValue) Value {
	v := Value{Kind: ValueKind(w.Kind)}
	switch v.Kind {
	case KindBool:
		v.boolVal = w.Bool
	case KindInt64:
		v.intVal = w.Int
	case KindString:
		v.strVal = w.Str
	case KindBytes:
		v.bytesVal = w.Bytes
	case KindStringSlice:
		v.strsVal = w.Strs
	case KindProxy:
		v.proxyVal = Proxy{interfaceName: w.Proxy.Interface, address: w.Proxy.Address}
	case KindArray:
		v.arrVal = fromWireSlice(w.Array)
	case KindError:
		v.errVal = &RemoteError{Kind: Kind(w.ErrKind), Message: w.ErrMsg}
	}
	return v
}

func toWireSlice(vs []Value) []wireValue {
	out := make([]wireValue, len(vs))
	for i, v := range vs {
		out[i] = toWire(v)
	}
	return out
}

func fromWireSlice(ws []wireValue) []Value {
	out := make([]Value, len(ws))
	for i, w := range ws {
		out[i] = fromWire(w)
	}
	return out
}

// writeFramed writes a four-byte big-endian length prefix followed by
// payload, matching the length-prefixed, typed wire format required by the
// spec for proxies and paths to round-trip losslessly.
func writeFramed(w io.Writer, payload []byte) error {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func readFramed(r io.Reader) ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header)
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func writeCall(w io.Writer, method string, args []Value, paramTypes []string, callID string) error {
	env := callEnvelope{
		Method:     method,
		Args:       toWireSlice(args),
		ParamTypes: paramTypes,
		CallID:     callID,
	}

	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, &env); err != nil {
		return fmt.Errorf("rmi: marshal call: %w", err)
	}

	return writeFramed(w, buf.Bytes())
}

func readCall(r io.Reader) (method string, args []Value, paramTypes []string, callID string, err error) {
	payload, err := readFramed(r)
	if err != nil {
		return "", nil, nil, "", fmt.Errorf("rmi: read call frame: %w", err)
	}

	var env callEnvelope
	if _, err := xdr.Unmarshal(bytes.NewReader(payload), &env); err != nil {
		return "", nil, nil, "", fmt.Errorf("rmi: unmarshal call: %w", err)
	}

	return env.Method, fromWireSlice(env.Args), env.ParamTypes, env.CallID, nil
}

func writeReply(w io.Writer, v Value) error {
	wv := toWire(v)

	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, &wv); err != nil {
		return fmt.Errorf("rmi: marshal reply: %w", err)
	}

	return writeFramed(w, buf.Bytes())
}

func readReply(r io.Reader) (Value, error) {
	payload, err := readFramed(r)
	if err != nil {
		return Value{}, fmt.Errorf("rmi: read reply frame: %w", err)
	}

	var wv wireValue
	if _, err := xdr.Unmarshal(bytes.NewReader(payload), &wv); err != nil {
		return Value{}, fmt.Errorf("rmi: unmarshal reply: %w", err)
	}

	return fromWire(wv), nil
}
