package serializer

import (
	"encoding/binary"
	"encoding/json"

	"github.com/corrix-dev/corrix/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency. Structured payloads (params, result,
// error object) stay JSON inside the binary frame so that both serializers
// normalize values identically.
func NewBinarySerializer() ISerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements ISerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasID     byte = 1 << 0
	hasMethod byte = 1 << 1
	hasParams byte = 1 << 2
	hasResult byte = 1 << 3
	hasErr    byte = 1 << 4
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (s binarySerializerImpl) Serialize(msg *common.Message) ([]byte, error) {
	// Header: 1 byte tag + 1 byte flags
	result := []byte{byte(msg.MsgType), 0}
	var flags byte

	withID := msg.MsgType == common.MsgTRequest ||
		msg.MsgType == common.MsgTResponse ||
		msg.MsgType == common.MsgTError

	if withID {
		flags |= hasID
		var idBuf [8]byte
		binary.BigEndian.PutUint64(idBuf[:], uint64(msg.ID))
		result = append(result, idBuf[:]...)
	}

	if msg.MsgType == common.MsgTRequest || msg.MsgType == common.MsgTNotification {
		flags |= hasMethod
		result = appendBlock(result, []byte(msg.Method))

		flags |= hasParams
		paramsBytes, err := json.Marshal(msg.Params)
		if err != nil {
			return nil, err
		}
		result = appendBlock(result, paramsBytes)
	}

	if msg.MsgType == common.MsgTResponse {
		flags |= hasResult
		resultBytes, err := json.Marshal(msg.Result)
		if err != nil {
			return nil, err
		}
		result = appendBlock(result, resultBytes)
	}

	if msg.MsgType == common.MsgTError {
		flags |= hasErr
		errBytes, err := json.Marshal(msg.Err)
		if err != nil {
			return nil, err
		}
		result = appendBlock(result, errBytes)
	}

	result[1] = flags
	return result, nil
}

func (s binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (tag + flags)
	if len(data) < 2 {
		return common.NewError(common.CodeParseError, "data too short for message header")
	}

	tag := data[0]
	flags := data[1]
	pos := 2

	// Every tag has exactly one valid flag combination; anything else is a
	// malformed frame.
	var expectedFlags byte
	switch common.MessageType(tag) {
	case common.MsgTRequest:
		expectedFlags = hasID | hasMethod | hasParams
	case common.MsgTNotification:
		expectedFlags = hasMethod | hasParams
	case common.MsgTResponse:
		expectedFlags = hasID | hasResult
	case common.MsgTError:
		expectedFlags = hasID | hasErr
	default:
		return common.NewErrorf(common.CodeInvalidRequest, "unknown message tag: %d", tag)
	}
	if flags != expectedFlags {
		return common.NewErrorf(common.CodeInvalidRequest, "flags %#02x do not match message tag %d", flags, tag)
	}

	var idPart, methodPart, paramsPart, resultPart, errPart any

	if flags&hasID != 0 {
		if pos+8 > len(data) {
			return common.NewError(common.CodeParseError, "data too short for id")
		}
		idPart = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	}

	if flags&hasMethod != 0 {
		block, next, err := readBlock(data, pos, "method")
		if err != nil {
			return err
		}
		methodPart = string(block)
		pos = next
	}

	if flags&hasParams != 0 {
		block, next, err := readBlock(data, pos, "params")
		if err != nil {
			return err
		}
		var params any
		if err := json.Unmarshal(block, &params); err != nil {
			return common.NewErrorDetail(common.CodeParseError, "", err.Error())
		}
		paramsPart = params
		pos = next
	}

	if flags&hasResult != 0 {
		block, next, err := readBlock(data, pos, "result")
		if err != nil {
			return err
		}
		var res any
		if err := json.Unmarshal(block, &res); err != nil {
			return common.NewErrorDetail(common.CodeParseError, "", err.Error())
		}
		resultPart = res
		pos = next
	}

	if flags&hasErr != 0 {
		block, _, err := readBlock(data, pos, "error")
		if err != nil {
			return err
		}
		var errObj any
		if err := json.Unmarshal(block, &errObj); err != nil {
			return common.NewErrorDetail(common.CodeParseError, "", err.Error())
		}
		errPart = errObj
	}

	// Rebuild the positional sequence for the tag and run the shared shape
	// validation.
	var parts []any
	switch common.MessageType(tag) {
	case common.MsgTRequest:
		parts = []any{int(tag), idPart, methodPart, paramsPart}
	case common.MsgTNotification:
		parts = []any{int(tag), methodPart, paramsPart}
	case common.MsgTResponse:
		parts = []any{int(tag), idPart, resultPart}
	case common.MsgTError:
		parts = []any{int(tag), idPart, errPart}
	}

	decoded, err := common.FromParts(parts)
	if err != nil {
		return err
	}
	*msg = *decoded
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// appendBlock appends a length-prefixed byte block (4 bytes big endian + data).
func appendBlock(dst, block []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(block)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, block...)
}

// readBlock reads a length-prefixed byte block starting at pos.
func readBlock(data []byte, pos int, field string) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, 0, common.NewErrorf(common.CodeParseError, "data too short for %s length", field)
	}
	blockLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if pos+blockLen > len(data) {
		return nil, 0, common.NewErrorf(common.CodeParseError, "data too short for %s data", field)
	}
	return data[pos : pos+blockLen], pos + blockLen, nil
}
