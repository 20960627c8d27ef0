package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// maxFrameSize bounds a single frame so a corrupt length prefix cannot force
// an absurd allocation.
const maxFrameSize = 64 << 20

// writeFrame writes a frame to the connection with the format:
// - 4 bytes: payload length (uint32, big endian)
// - N bytes: payload
//
// The correlation id lives inside the encoded envelope, so the frame header
// carries nothing but the length.
func writeFrame(conn net.Conn, data []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))

	b := net.Buffers{header[:], data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads one complete frame from the connection.
func readFrame(conn net.Conn) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return nil, err
	}

	contentLength := binary.BigEndian.Uint32(header[:])
	if contentLength > maxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", contentLength)
	}
	if contentLength == 0 {
		return []byte{}, nil
	}

	data := make([]byte, contentLength)
	if _, err := io.ReadFull(conn, data); err != nil {
		return nil, err
	}
	return data, nil
}
