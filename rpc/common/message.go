package common

import (
	"encoding/json"
	"fmt"
	"math"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// NoID is the logical id of messages that carry no correlation id
// (notifications, and error replies to input that could not be decoded).
const NoID int64 = -1

// Message represents a single wire message. It is a tagged union over four
// shapes; which fields are meaningful depends on MsgType:
//
//   - Request:       ID, Method, Params
//   - Notification:  Method, Params (ID is NoID)
//   - Response:      ID, Result
//   - ErrorResponse: ID, Err
//
// On the wire every message is a fixed-position sequence whose first element
// is the numeric tag (see Parts / FromParts).
type Message struct {
	MsgType MessageType
	ID      int64
	Method  string
	Params  []any
	Result  any
	Err     *Error
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewRequest creates a new Request message. The caller supplies the
// correlation id (the engine owns the id counter, not the codec).
func NewRequest(id int64, method string, params []any) *Message {
	if params == nil {
		params = []any{}
	}
	return &Message{
		MsgType: MsgTRequest,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// NewNotification creates a new Notification message.
func NewNotification(method string, params []any) *Message {
	if params == nil {
		params = []any{}
	}
	return &Message{
		MsgType: MsgTNotification,
		ID:      NoID,
		Method:  method,
		Params:  params,
	}
}

// NewResponse creates a new success Response for the given request id.
func NewResponse(id int64, result any) *Message {
	return &Message{
		MsgType: MsgTResponse,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse creates a new ErrorResponse for the given request id.
func NewErrorResponse(id int64, err *Error) *Message {
	return &Message{
		MsgType: MsgTError,
		ID:      id,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Positional Envelope
// --------------------------------------------------------------------------

// Parts returns the fixed-position sequence encoding of the message:
//
//	Request:       [0, id, method, params]
//	Notification:  [1, method, params]
//	Response:      [2, id, result]
//	ErrorResponse: [3, id, {code, message, detail?}]
func (m *Message) Parts() []any {
	switch m.MsgType {
	case MsgTRequest:
		return []any{int(MsgTRequest), m.ID, m.Method, m.Params}
	case MsgTNotification:
		return []any{int(MsgTNotification), m.Method, m.Params}
	case MsgTResponse:
		return []any{int(MsgTResponse), m.ID, m.Result}
	case MsgTError:
		obj := map[string]any{
			"code":    m.Err.Code,
			"message": m.Err.Message,
		}
		if m.Err.Detail != "" {
			obj["detail"] = m.Err.Detail
		}
		return []any{int(MsgTError), m.ID, obj}
	default:
		// Unreachable for messages built via the factories above.
		return nil
	}
}

// FromParts rebuilds a Message from a decoded positional sequence and
// validates its shape. Every one of the four tags has an explicit per-field
// type check; any other tag value is rejected. All failures carry code
// CodeInvalidRequest.
func FromParts(parts []any) (*Message, error) {
	if len(parts) == 0 {
		return nil, NewError(CodeInvalidRequest, "empty message")
	}

	tag, ok := asInt(parts[0])
	if !ok {
		return nil, NewError(CodeInvalidRequest, "message tag must be an integer")
	}
	// Range-check before the uint8 conversion so out-of-range tags cannot
	// wrap onto a valid one.
	if tag < int64(MsgTRequest) || tag > int64(MsgTError) {
		return nil, NewError(CodeInvalidRequest, fmt.Sprintf("unknown message tag: %d", tag))
	}

	switch MessageType(tag) {
	case MsgTRequest:
		if len(parts) != 4 {
			return nil, NewError(CodeInvalidRequest, fmt.Sprintf("request must have 4 elements, got %d", len(parts)))
		}
		id, ok := asInt(parts[1])
		if !ok {
			return nil, NewError(CodeInvalidRequest, "request id must be an integer")
		}
		method, ok := parts[2].(string)
		if !ok {
			return nil, NewError(CodeInvalidRequest, "request method must be a string")
		}
		params, ok := asParams(parts[3])
		if !ok {
			return nil, NewError(CodeInvalidRequest, "request params must be an array")
		}
		return NewRequest(id, method, params), nil

	case MsgTNotification:
		if len(parts) != 3 {
			return nil, NewError(CodeInvalidRequest, fmt.Sprintf("notification must have 3 elements, got %d", len(parts)))
		}
		method, ok := parts[1].(string)
		if !ok {
			return nil, NewError(CodeInvalidRequest, "notification method must be a string")
		}
		params, ok := asParams(parts[2])
		if !ok {
			return nil, NewError(CodeInvalidRequest, "notification params must be an array")
		}
		return NewNotification(method, params), nil

	case MsgTResponse:
		if len(parts) != 3 {
			return nil, NewError(CodeInvalidRequest, fmt.Sprintf("response must have 3 elements, got %d", len(parts)))
		}
		id, ok := asInt(parts[1])
		if !ok {
			return nil, NewError(CodeInvalidRequest, "response id must be an integer")
		}
		return NewResponse(id, parts[2]), nil

	case MsgTError:
		if len(parts) != 3 {
			return nil, NewError(CodeInvalidRequest, fmt.Sprintf("error response must have 3 elements, got %d", len(parts)))
		}
		id, ok := asInt(parts[1])
		if !ok {
			return nil, NewError(CodeInvalidRequest, "error response id must be an integer")
		}
		obj, ok := parts[2].(map[string]any)
		if !ok {
			return nil, NewError(CodeInvalidRequest, "error response payload must be an object")
		}
		code, ok := asInt(obj["code"])
		if !ok {
			return nil, NewError(CodeInvalidRequest, "error code must be an integer")
		}
		message, ok := obj["message"].(string)
		if !ok {
			return nil, NewError(CodeInvalidRequest, "error message must be a string")
		}
		detail := ""
		if d, present := obj["detail"]; present {
			detail, ok = d.(string)
			if !ok {
				return nil, NewError(CodeInvalidRequest, "error detail must be a string")
			}
		}
		return NewErrorResponse(id, NewErrorDetail(int(code), message, detail)), nil

	default:
		return nil, NewError(CodeInvalidRequest, fmt.Sprintf("unknown message tag: %d", tag))
	}
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// asInt accepts the integer representations a decoder may produce. JSON
// decodes all numbers as float64, so integral floats are accepted too.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

// asParams normalizes the params element into a []any. A nil element counts
// as an omitted params list and defaults to empty.
func asParams(v any) ([]any, bool) {
	if v == nil {
		return []any{}, true
	}
	params, ok := v.([]any)
	return params, ok
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the wire tag of a message. The numeric values are part
// of the compatibility surface and must not change.
type MessageType uint8

const (
	MsgTRequest      MessageType = 0 // expects a reply, carries an id
	MsgTNotification MessageType = 1 // fire-and-forget, no id
	MsgTResponse     MessageType = 2 // success reply
	MsgTError        MessageType = 3 // failure reply
)

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTRequest:
		return "request"
	case MsgTNotification:
		return "notification"
	case MsgTResponse:
		return "response"
	case MsgTError:
		return "error"
	default:
		return "unknown"
	}
}
