// Package serializer provides message serialization for the RPC system. It
// defines a common interface and multiple implementations for converting
// between Message objects and byte arrays.
//
// The package focuses on:
//   - Providing a consistent interface for different serialization formats
//   - Enforcing the envelope shape invariants on every decode path
//   - Distinguishing syntactic failures (parse error) from structural ones
//     (invalid request) via the shared error catalogue
//
// Key Components:
//
//   - ISerializer: Core interface that all serializer implementations must
//     satisfy.
//
//   - jsonSerializerImpl: The primary textual format. Encodes the positional
//     envelope directly as a JSON array, useful for debugging and
//     interoperability with other systems.
//
//   - binarySerializerImpl: Custom binary format with a flag-based header
//     encoding only present fields. Structured payloads stay JSON inside the
//     frame so both serializers normalize values identically (all numbers
//     decode to float64, objects to map[string]any).
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
package serializer
