package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID     string    `json:"id" msgpack:"id"`
	Values []float32 `json:"values" msgpack:"values"`
	Tags   []string  `json:"tags,omitempty" msgpack:"tags,omitempty"`
	Count  int       `json:"count" msgpack:"count"`
}

func TestCodecs_RoundTrip(t *testing.T) {
	in := payload{ID: "op-1", Values: []float32{1.5, -2, 0}, Tags: []string{"a", "b"}, Count: 3}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())

			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out payload
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestCodecs_JSONInterchangeable(t *testing.T) {
	in := payload{ID: "x", Values: []float32{1}}
	data := MustMarshal(GoJSON{}, in)

	var out payload
	require.NoError(t, JSON{}.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	appended, err := GoJSON{}.Append([]byte("prefix"), in)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(appended, []byte("prefix")))
}

func TestByName_Unknown(t *testing.T) {
	_, ok := ByName("protobuf")
	assert.False(t, ok)
}

func TestCompression_RoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("partial answer "), 200)
	short := []byte("abc")

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			for _, data := range [][]byte{compressible, short, {}} {
				block, err := c.Compress(data)
				require.NoError(t, err)

				got, err := c.Decompress(block)
				require.NoError(t, err)
				assert.Equal(t, len(data), len(got))
				assert.True(t, bytes.Equal(data, got))
			}

			block, err := c.Compress(compressible)
			require.NoError(t, err)
			if c == CompressionNone {
				assert.Len(t, block, len(compressible)+blockHeaderSize)
			} else {
				assert.Less(t, len(block), len(compressible))
			}
		})
	}
}

func TestCompression_Corrupt(t *testing.T) {
	_, err := CompressionLZ4.Decompress([]byte{1, 2})
	assert.ErrorIs(t, err, ErrCorruptBlock)

	block, err := CompressionZSTD.Compress(bytes.Repeat([]byte("z"), 1024))
	require.NoError(t, err)
	_, err = CompressionZSTD.Decompress(block[:len(block)-4])
	assert.ErrorIs(t, err, ErrCorruptBlock)

	_, err = Compression(9).Compress([]byte("x"))
	assert.Error(t, err)
}
