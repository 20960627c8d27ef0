package common

import (
	"reflect"
	"testing"
)

// TestMessageFactories tests that the factory functions fill the right fields
func TestMessageFactories(t *testing.T) {
	req := NewRequest(7, "sum", []any{float64(1), float64(2)})
	if req.MsgType != MsgTRequest || req.ID != 7 || req.Method != "sum" {
		t.Errorf("unexpected request: %+v", req)
	}

	// nil params must default to an empty slice
	req = NewRequest(1, "ping", nil)
	if req.Params == nil || len(req.Params) != 0 {
		t.Errorf("expected empty params, got %v", req.Params)
	}

	notif := NewNotification("log", nil)
	if notif.MsgType != MsgTNotification || notif.ID != NoID {
		t.Errorf("unexpected notification: %+v", notif)
	}

	resp := NewResponse(7, "pong")
	if resp.MsgType != MsgTResponse || resp.ID != 7 || resp.Result != "pong" {
		t.Errorf("unexpected response: %+v", resp)
	}

	errResp := NewErrorResponse(7, NewError(CodeMethodNotFound, ""))
	if errResp.MsgType != MsgTError || errResp.Err.Code != CodeMethodNotFound {
		t.Errorf("unexpected error response: %+v", errResp)
	}
}

// TestPartsRoundTrip tests that FromParts inverts Parts for every message shape
func TestPartsRoundTrip(t *testing.T) {
	messages := []*Message{
		NewRequest(1, "echo", []any{"a", float64(2), true, nil}),
		NewRequest(2, "ping", nil),
		NewNotification("log", []any{"hello"}),
		NewResponse(3, map[string]any{"ok": true}),
		NewResponse(4, nil),
		NewErrorResponse(5, NewError(CodeApplicationError, "handler failed")),
		NewErrorResponse(6, NewErrorDetail(CodeGuardError, "guard error", "unauthorized")),
	}

	for i, msg := range messages {
		result, err := FromParts(msg.Parts())
		if err != nil {
			t.Errorf("message %d: FromParts failed: %v", i, err)
			continue
		}
		if !reflect.DeepEqual(msg, result) {
			t.Errorf("message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v", i, msg, result)
		}
	}
}

// TestFromPartsValidation tests that malformed sequences are rejected with
// the invalid request code
func TestFromPartsValidation(t *testing.T) {
	testCases := []struct {
		name  string
		parts []any
	}{
		{name: "Empty sequence", parts: []any{}},
		{name: "Non-numeric tag", parts: []any{"0", int64(1), "m", []any{}}},
		{name: "Fractional tag", parts: []any{0.5, int64(1), "m", []any{}}},
		{name: "Unknown tag", parts: []any{9, int64(1), "m", []any{}}},
		{name: "Tag wrapping to request", parts: []any{float64(256), float64(1), "m", []any{}}},
		{name: "Tag wrapping to response", parts: []any{float64(258), float64(1), "result"}},
		{name: "Negative tag", parts: []any{float64(-256), float64(1), "m", []any{}}},
		{name: "Request too short", parts: []any{0, int64(1), "m"}},
		{name: "Request too long", parts: []any{0, int64(1), "m", []any{}, "extra"}},
		{name: "Request non-string method", parts: []any{0, int64(1), 42, []any{}}},
		{name: "Request non-array params", parts: []any{0, int64(1), "m", "nope"}},
		{name: "Request non-integer id", parts: []any{0, "one", "m", []any{}}},
		{name: "Request fractional id", parts: []any{0, 1.5, "m", []any{}}},
		{name: "Notification wrong arity", parts: []any{1, "m"}},
		{name: "Notification non-string method", parts: []any{1, nil, []any{}}},
		{name: "Response wrong arity", parts: []any{2, int64(1)}},
		{name: "Response non-integer id", parts: []any{2, "one", "result"}},
		{name: "Error non-object payload", parts: []any{3, int64(1), "boom"}},
		{name: "Error payload without code", parts: []any{3, int64(1), map[string]any{"message": "m"}}},
		{name: "Error payload without message", parts: []any{3, int64(1), map[string]any{"code": float64(1004)}}},
		{name: "Error payload non-string detail", parts: []any{3, int64(1), map[string]any{"code": float64(1004), "message": "m", "detail": 5}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromParts(tc.parts)
			if err == nil {
				t.Fatalf("expected error for %v", tc.parts)
			}
			e := AsError(err, CodeInternalError)
			if e.Code != CodeInvalidRequest {
				t.Errorf("expected code %d, got %d (%v)", CodeInvalidRequest, e.Code, e)
			}
		})
	}
}

// TestFromPartsNumberForms tests that ids survive the number representations
// different decoders produce
func TestFromPartsNumberForms(t *testing.T) {
	forms := []any{int(12), int64(12), uint32(12), uint64(12), float64(12)}
	for _, form := range forms {
		msg, err := FromParts([]any{0, form, "m", []any{}})
		if err != nil {
			t.Errorf("id form %T rejected: %v", form, err)
			continue
		}
		if msg.ID != 12 {
			t.Errorf("id form %T: expected 12, got %d", form, msg.ID)
		}
	}
}

// TestFromPartsNilParams tests that a nil params element counts as empty
func TestFromPartsNilParams(t *testing.T) {
	msg, err := FromParts([]any{0, int64(1), "ping", nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Params == nil || len(msg.Params) != 0 {
		t.Errorf("expected empty params, got %v", msg.Params)
	}
}
