package serializer

import (
	"encoding/json"

	"github.com/corrix-dev/corrix/rpc/common"
)

// NewJSONSerializer creates a new serializer encoding the positional
// envelope as a JSON array. This is the primary, textual wire format.
func NewJSONSerializer() ISerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the ISerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(msg *common.Message) ([]byte, error) {
	return json.Marshal(msg.Parts())
}

func (j jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	// Parse first: a syntax failure is a parse error, everything after is a
	// shape question.
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return common.NewErrorDetail(common.CodeParseError, "", err.Error())
	}

	parts, ok := raw.([]any)
	if !ok {
		return common.NewError(common.CodeInvalidRequest, "message must be an array")
	}

	decoded, err := common.FromParts(parts)
	if err != nil {
		return err
	}
	*msg = *decoded
	return nil
}
