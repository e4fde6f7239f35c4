package contract

import (
	"fmt"
)

// EncodeDeploy builds the payload of a deployment transaction: the built-in's
// artifact id followed by its ABI-encoded constructor arguments.
func EncodeDeploy(id string, args ...interface{}) ([]byte, error) {
	b, ok := GetBuiltin(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArtifact, id)
	}
	packed, err := b.ABI.Constructor.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s constructor: %w", id, err)
	}
	return append(b.Artifact[:], packed...), nil
}

// DecodeDeploy splits a deployment payload back into the built-in it names
// and the constructor arguments.
func DecodeDeploy(data []byte) (BuiltinKind, []interface{}, error) {
	if len(data) < 4 {
		return BuiltinKind{}, nil, fmt.Errorf("%w: payload too short", ErrUnknownArtifact)
	}
	var id [4]byte
	copy(id[:], data[:4])
	b, ok := ByArtifact(id)
	if !ok {
		return BuiltinKind{}, nil, fmt.Errorf("%w: %x", ErrUnknownArtifact, id)
	}
	args, err := b.ABI.Constructor.Inputs.Unpack(data[4:])
	if err != nil {
		return BuiltinKind{}, nil, fmt.Errorf("decoding %s constructor: %w", b.ID, err)
	}
	return b, args, nil
}
