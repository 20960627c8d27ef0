// Package common provides the core data structures shared across the RPC
// system: the positional Message envelope with its shape validation, the
// structured Error type with the fixed code catalogue, the engine and
// transport configuration structs, and the logging setup.
//
// The wire envelope is a fixed-position sequence whose first element is the
// numeric message tag:
//
//	Request:       [0, id, method, params]
//	Notification:  [1, method, params]
//	Response:      [2, id, result]
//	ErrorResponse: [3, id, {code, message, detail?}]
//
// The id is present and numeric for Request, Response and ErrorResponse and
// absent (logically -1) for Notification. Params default to an empty array
// when omitted. FromParts enforces these invariants for every tag; no other
// tag values are accepted.
package common
