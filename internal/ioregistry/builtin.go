package ioregistry

import (
	"encoding/json"
	"os"
	"reflect"
)

// registerBuiltins seeds the two default handlers every Registry ships
// with: raw bytes (for pre-serialized payloads) and a JSON catch-all for
// arbitrary values, standing in for the original's pickle-based
// "@writable(object)" fallback. JSON is the standard-library choice here
// because no pack dependency offers arbitrary-object serialization without
// also imposing a schema (domain-specific serializers are out of scope —
// spec.md treats the filesystem serializer registry for domain objects as
// an external collaborator callers register into this registry themselves).
func registerBuiltins(r *Registry) {
	bytesType := reflect.TypeOf([]byte(nil))
	r.writers[bytesType] = func(obj any, path string) error {
		b, ok := obj.([]byte)
		if !ok {
			return ErrNoHandler
		}
		return os.WriteFile(path, b, 0o644)
	}
	r.readers[bytesType] = func(path string) (any, error) {
		return os.ReadFile(path)
	}
	r.names[bytesType.String()] = bytesType

	r.readers[AnyType] = jsonReader
	r.names[AnyType.String()] = AnyType
}

// AnyType is the interface{} type literal. reflect.TypeOf(obj) on a value
// held in an any never produces this (it always yields the dynamic
// concrete type), so AnyType is only useful as an explicit key: callers to
// Read who don't know or care about the stored type's exact Go type pass
// AnyType to get the generic JSON reader back. Write's JSON catch-all is a
// separate, unkeyed fallback (see Registry.catchAll) for exactly this
// reason.
var AnyType = reflect.TypeOf((*any)(nil)).Elem()

func jsonWriter(obj any, path string) error {
	b, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func jsonReader(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}
