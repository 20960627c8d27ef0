package serializer

import (
	"reflect"
	"testing"

	"github.com/corrix-dev/corrix/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() ISerializer{
	"JSON":   NewJSONSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates one message per wire shape. All payload values stay in
// the decoder's value domain (float64 numbers, string keys) so round trips
// compare equal for every serializer.
func testMessages() []*common.Message {
	return []*common.Message{
		// Request with mixed params
		common.NewRequest(1, "echo", []any{"a", float64(2), true, nil}),

		// Request with no params
		common.NewRequest(2, "ping", nil),

		// Request with nested params
		common.NewRequest(3, "store", []any{
			map[string]any{"key": "k", "ttl": float64(60)},
			[]any{float64(1), float64(2)},
		}),

		// Notification
		common.NewNotification("log", []any{"hello"}),

		// Response with structured result
		common.NewResponse(3, map[string]any{"ok": true, "count": float64(4)}),

		// Response with nil result
		common.NewResponse(4, nil),

		// Error response without detail
		common.NewErrorResponse(5, common.NewError(common.CodeMethodNotFound, "")),

		// Error response with detail
		common.NewErrorResponse(6, common.NewErrorDetail(common.CodeGuardError, "guard error", "unauthorized")),
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(*msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, *msg, result)
				}
			}
		})
	}
}

// TestJSONWireFormat pins the positional JSON encoding of each shape
func TestJSONWireFormat(t *testing.T) {
	serializer := NewJSONSerializer()

	testCases := []struct {
		name string
		msg  *common.Message
		want string
	}{
		{
			name: "Request",
			msg:  common.NewRequest(1, "sum", []any{float64(1), float64(2)}),
			want: `[0,1,"sum",[1,2]]`,
		},
		{
			name: "Notification",
			msg:  common.NewNotification("log", []any{"hi"}),
			want: `[1,"log",["hi"]]`,
		},
		{
			name: "Response",
			msg:  common.NewResponse(1, float64(3)),
			want: `[2,1,3]`,
		},
		{
			name: "ErrorResponse",
			msg:  common.NewErrorResponse(1, common.NewError(common.CodeMethodNotFound, "method not found")),
			want: `[3,1,{"code":1002,"message":"method not found"}]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := serializer.Serialize(tc.msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}
			if string(data) != tc.want {
				t.Errorf("wire format mismatch:\nExpected: %s\nGot: %s", tc.want, string(data))
			}
		})
	}
}

// TestDeserializeErrorCodes tests that syntactically broken input yields a
// parse error and well-formed input with an invalid shape yields an invalid
// request error
func TestDeserializeErrorCodes(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		serializer := NewJSONSerializer()

		testCases := []struct {
			name string
			data []byte
			code int
		}{
			{name: "Truncated JSON", data: []byte(`[0,1,"m"`), code: common.CodeParseError},
			{name: "Not JSON at all", data: []byte(`garbage`), code: common.CodeParseError},
			{name: "JSON object instead of array", data: []byte(`{"method":"m"}`), code: common.CodeInvalidRequest},
			{name: "Unknown tag", data: []byte(`[9,1,"m",[]]`), code: common.CodeInvalidRequest},
			{name: "Tag wrapping past uint8", data: []byte(`[256,1,"m",[]]`), code: common.CodeInvalidRequest},
			{name: "Negative tag", data: []byte(`[-256,1,"m",[]]`), code: common.CodeInvalidRequest},
			{name: "Request wrong arity", data: []byte(`[0,1,"m"]`), code: common.CodeInvalidRequest},
			{name: "Request non-array params", data: []byte(`[0,1,"m","x"]`), code: common.CodeInvalidRequest},
			{name: "Fractional id", data: []byte(`[0,1.5,"m",[]]`), code: common.CodeInvalidRequest},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				var msg common.Message
				err := serializer.Deserialize(tc.data, &msg)
				if err == nil {
					t.Fatalf("Expected error but got none")
				}
				e := common.AsError(err, common.CodeInternalError)
				if e.Code != tc.code {
					t.Errorf("Expected code %d, got %d (%v)", tc.code, e.Code, e)
				}
			})
		}
	})

	t.Run("Binary", func(t *testing.T) {
		serializer := NewBinarySerializer()

		testCases := []struct {
			name string
			data []byte
			code int
		}{
			{name: "Empty data", data: []byte{}, code: common.CodeParseError},
			{name: "Header only", data: []byte{0}, code: common.CodeParseError},
			{name: "Truncated id", data: []byte{0, 0x07, 0, 0, 0}, code: common.CodeParseError},
			{name: "Truncated method block", data: []byte{0, 0x07, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 5, 'a'}, code: common.CodeParseError},
			{name: "Unknown tag", data: []byte{9, 0}, code: common.CodeInvalidRequest},
			{name: "Request without fields", data: []byte{0, 0}, code: common.CodeInvalidRequest},
			{name: "Notification with id flag", data: []byte{1, 0x07}, code: common.CodeInvalidRequest},
			{name: "Response with method flag", data: []byte{2, 0x0b}, code: common.CodeInvalidRequest},
			{name: "Request missing params flag", data: []byte{0, 0x03}, code: common.CodeInvalidRequest},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				var msg common.Message
				err := serializer.Deserialize(tc.data, &msg)
				if err == nil {
					t.Fatalf("Expected error but got none")
				}
				e := common.AsError(err, common.CodeInternalError)
				if e.Code != tc.code {
					t.Errorf("Expected code %d, got %d (%v)", tc.code, e.Code, e)
				}
			})
		}
	})
}
