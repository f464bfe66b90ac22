package discord

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, OpHandshake, map[string]interface{}{"v": 1}))

	raw := buf.Bytes()
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(raw[0:4]))
	assert.Equal(t, uint32(len(`{"v":1}`)), binary.LittleEndian.Uint32(raw[4:8]))
	assert.Equal(t, `{"v":1}`, string(raw[8:]))

	op, body, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, OpHandshake, op)
	assert.JSONEq(t, `{"v":1}`, string(body))
}

func TestReadFrameErrors(t *testing.T) {
	_, _, err := readFrame(bytes.NewReader([]byte{1, 0, 0}))
	assert.Error(t, err)

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], uint32(OpFrame))
	binary.LittleEndian.PutUint32(header[4:8], maxFrameSize+1)
	_, _, err = readFrame(bytes.NewReader(header))
	assert.Error(t, err)

	binary.LittleEndian.PutUint32(header[4:8], 10)
	_, _, err = readFrame(bytes.NewReader(append(header, '{')))
	assert.Error(t, err)
}
