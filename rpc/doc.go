// Package rpc provides a transport-agnostic framework for remote procedure
// calls over a bidirectional stream of opaque messages. It turns raw wire
// messages into method calls with replies, notifications and guarded
// dispatch.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures used across the RPC system, including
//     the positional Message envelope, the fixed error code catalogue,
//     configuration structures, and logging.
//
//   - serializer: Message serialization with multiple format options (JSON,
//     Binary) for converting between Message objects and byte arrays.
//
//   - engine: The correlation engine itself: the pending-request table with
//     timeout eviction, the dispatcher with its guard pipeline, and the
//     execution logic that normalizes handler outcomes into replies. Two
//     variants, with and without an out-of-band session value.
//
//   - transport: Network communication abstractions with pluggable
//     implementations (TCP, Unix sockets, in-process pipe).
package rpc
