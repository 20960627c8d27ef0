package serializer

import "github.com/corrix-dev/corrix/rpc/common"

// ISerializer is the interface for all Message serializers.
//
// Deserialize reports failures as *common.Error: CodeParseError when the
// input is not syntactically valid in the serializer's format, and
// CodeInvalidRequest when the input parses but violates the envelope shape
// (wrong tag, wrong arity, wrong field types).
type ISerializer interface {
	// Serialize serializes a Message into a byte array
	Serialize(msg *common.Message) ([]byte, error)
	// Deserialize deserializes a byte array into a Message
	Deserialize(b []byte, msg *common.Message) error
}
