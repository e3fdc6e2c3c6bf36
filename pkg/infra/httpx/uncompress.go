package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// AcceptEncoding lists the encodings DecodeBody understands.
const AcceptEncoding = "gzip, br, zstd, deflate"

// ReadBody reads and closes resp.Body, undoing any Content-Encoding.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	body, _, err := DecodeBody(resp.Header.Get("Content-Encoding"), raw)
	return body, err
}

// DecodeBody decodes body according to a Content-Encoding value. Chained
// encodings ("gzip, br") are undone right to left. Deflate accepts both the
// zlib-wrapped and the raw form.
func DecodeBody(contentEncoding string, body []byte) ([]byte, bool, error) {
	if contentEncoding == "" {
		return body, false, nil
	}
	codings := strings.Split(contentEncoding, ",")
	changed := false
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.TrimSpace(strings.ToLower(codings[i]))
		var (
			out []byte
			err error
		)
		switch coding {
		case "br":
			out, err = io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		case "gzip":
			out, err = readAndClose(gzip.NewReader(bytes.NewReader(body)))
		case "zstd":
			out, err = decodeZstd(body)
		case "deflate":
			out, err = readAndClose(zlib.NewReader(bytes.NewReader(body)))
			if err != nil {
				out, err = readAndClose(flate.NewReader(bytes.NewReader(body)), nil)
			}
		case "identity", "":
			continue
		default:
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", codings[i])
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to decode %s body: %w", coding, err)
		}
		body = out
		changed = true
	}
	return body, changed, nil
}

func readAndClose(r io.ReadCloser, openErr error) ([]byte, error) {
	if openErr != nil {
		return nil, openErr
	}
	out, err := io.ReadAll(r)
	cerr := r.Close()
	if err != nil {
		return nil, err
	}
	return out, cerr
}

func decodeZstd(body []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}
