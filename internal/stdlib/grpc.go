package stdlib

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// grpcRegistry holds proto file descriptors loaded by Grpc.loadProto,
// mirroring the teacher's builtins_grpc.go package-level protoRegistry —
// one process-wide table keyed by descriptor name, guarded by a mutex since
// host functions may be re-entered from concurrent embeddings.
var (
	grpcRegistry      = make(map[string]*desc.FileDescriptor)
	grpcRegistryMutex sync.RWMutex
)

// grpcConns tracks open client connections by an opaque handle so Fusabi
// code can hold a connection as a plain Int rather than needing a dedicated
// heap.HeapObject kind just for this one module.
var (
	grpcConns     = make(map[int64]*grpc.ClientConn)
	grpcConnsMu   sync.Mutex
	grpcConnsNext int64
)

func grpcEntries() []entry {
	return []entry{
		{"dial", hostfn.Native{Name: "Grpc.dial", Arity: 1, Fn: grpcConnect}},
		{"close", hostfn.Native{Name: "Grpc.close", Arity: 1, Fn: grpcClose}},
		{"loadProto", hostfn.Native{Name: "Grpc.loadProto", Arity: 1, Fn: grpcLoadProto}},
		{"call", hostfn.Native{Name: "Grpc.call", Arity: 3, Fn: grpcInvoke}},
	}
}

func grpcConnect(c hostfn.Caller, args []value.Value) (value.Value, error) {
	target, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return errVariant(c, newString(c, err.Error())), nil
	}
	grpcConnsMu.Lock()
	grpcConnsNext++
	handle := grpcConnsNext
	grpcConns[handle] = conn
	grpcConnsMu.Unlock()
	return ok(c, value.IntVal(handle)), nil
}

func grpcClose(c hostfn.Caller, args []value.Value) (value.Value, error) {
	handle, err := argInt(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	grpcConnsMu.Lock()
	conn, found := grpcConns[handle]
	delete(grpcConns, handle)
	grpcConnsMu.Unlock()
	if !found {
		return errVariant(c, newString(c, "Grpc.close: unknown connection handle")), nil
	}
	if err := conn.Close(); err != nil {
		return errVariant(c, newString(c, err.Error())), nil
	}
	return ok(c, value.UnitVal()), nil
}

func grpcLoadProto(c hostfn.Caller, args []value.Value) (value.Value, error) {
	path, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	parser := protoparse.Parser{ImportPaths: []string{"."}}
	fds, err := parser.ParseFiles(path)
	if err != nil {
		return errVariant(c, newString(c, "failed to parse proto: "+err.Error())), nil
	}

	grpcRegistryMutex.Lock()
	for _, fd := range fds {
		grpcRegistry[fd.GetName()] = fd
	}
	grpcRegistryMutex.Unlock()
	return ok(c, value.UnitVal()), nil
}

func grpcInvoke(c hostfn.Caller, args []value.Value) (value.Value, error) {
	handle, err := argInt(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	methodPath, err := argString(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	requestJSON, err := valueToJSON(args[2])
	if err != nil {
		return value.Value{}, err
	}

	grpcConnsMu.Lock()
	conn, found := grpcConns[handle]
	grpcConnsMu.Unlock()
	if !found {
		return errVariant(c, newString(c, "Grpc.call: unknown connection handle")), nil
	}

	md, err := findGrpcMethod(methodPath)
	if err != nil {
		return errVariant(c, newString(c, err.Error())), nil
	}

	reqMsg := dynamic.NewMessage(md.GetInputType())
	reqBytes, err := json.Marshal(requestJSON)
	if err != nil {
		return errVariant(c, newString(c, "failed to build request: "+err.Error())), nil
	}
	if err := reqMsg.UnmarshalJSON(reqBytes); err != nil {
		return errVariant(c, newString(c, "failed to build request: "+err.Error())), nil
	}

	respMsg := dynamic.NewMessage(md.GetOutputType())
	fullPath := methodPath
	if len(fullPath) == 0 || fullPath[0] != '/' {
		fullPath = "/" + fullPath
	}

	if err := conn.Invoke(context.Background(), fullPath, reqMsg, respMsg); err != nil {
		return errVariant(c, newString(c, "RPC failed: "+err.Error())), nil
	}

	respBytes, err := respMsg.MarshalJSON()
	if err != nil {
		return errVariant(c, newString(c, err.Error())), nil
	}
	var decoded interface{}
	if err := json.Unmarshal(respBytes, &decoded); err != nil {
		return errVariant(c, newString(c, err.Error())), nil
	}
	return ok(c, jsonToValue(c, decoded)), nil
}

func findGrpcMethod(methodPath string) (*desc.MethodDescriptor, error) {
	serviceName, methodName, err := splitMethodPath(methodPath)
	if err != nil {
		return nil, err
	}
	grpcRegistryMutex.RLock()
	defer grpcRegistryMutex.RUnlock()
	for _, fd := range grpcRegistry {
		for _, svc := range fd.GetServices() {
			if svc.GetFullyQualifiedName() == serviceName || svc.GetName() == serviceName {
				if m := svc.FindMethodByName(methodName); m != nil {
					return m, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("Grpc.call: method %q not found in any loaded proto", methodPath)
}

func splitMethodPath(methodPath string) (service, method string, err error) {
	path := methodPath
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	idx := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			idx = i
			break
		}
	}
	if idx == -1 {
		for i := len(path) - 1; i >= 0; i-- {
			if path[i] == '.' {
				idx = i
				break
			}
		}
	}
	if idx == -1 {
		return "", "", fmt.Errorf("Grpc.call: malformed method path %q, expected package.Service/Method", methodPath)
	}
	return path[:idx], path[idx+1:], nil
}
