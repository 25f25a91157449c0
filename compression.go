package jose

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// maxDecompressedSize bounds the inflated payload so a small hostile token
// cannot expand into arbitrary memory.
const maxDecompressedSize = 1 << 20

// Compressor turns a payload into its "zip" wire form and back.
// Only "DEF" (raw deflate, RFC 1951) is a registered member; the registry is
// populated at init and closed afterwards.
type Compressor interface {
	// Name returns the "zip" header value.
	Name() string
	// Compress appends the compressed form of "src" to "dst" and returns the
	// extended buffer.
	Compress(dst, src []byte) ([]byte, error)
	// Decompress inflates "src".
	Decompress(src []byte) ([]byte, error)
}

// Deflate is the "DEF" compression algorithm.
var Deflate Compressor = &deflateCompressor{}

var compressors = map[string]Compressor{}

func init() {
	compressors[Deflate.Name()] = Deflate
}

// ParseCompressionAlgorithm returns the compressor by its "zip" name,
// or nil when the name is unknown.
func ParseCompressionAlgorithm(name string) Compressor {
	return compressors[name]
}

type deflateCompressor struct{}

func (*deflateCompressor) Name() string { return "DEF" }

func (*deflateCompressor) Compress(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	w, err := flate.NewWriter(buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err = w.Write(src); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (*deflateCompressor) Decompress(src []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, maxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	if len(out) > maxDecompressedSize {
		return nil, fmt.Errorf("%w: payload too large", ErrDecompressionFailed)
	}
	return out, nil
}
