// Package formdata decodes a single file part out of a multipart/form-data body.
//
// The Decoder is an explicit state machine over any io.Reader:
//
//	ExpectBoundaryLine -> ExpectContentDisposition -> ExpectBlankLine -> StreamingBody -> Complete
//
// Any violation moves it to Failed. The body is streamed line by line with one line of
// look-behind: a line is only released once the next line is known not to be the
// boundary, and the line directly before the boundary loses its trailing line
// terminator, which belongs to the delimiter and not to the file.
package formdata

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/textproto"
	"strings"

	"github.com/frankcohen/cloudcity"
)

const (
	// bufferSize bounds a single body chunk and so the look-behind held in memory.
	bufferSize = 64 << 10
	// maxHeaderLines bounds the part header block.
	maxHeaderLines = 32
	// maxHeaderLine bounds a single part header line.
	maxHeaderLine = 4 << 10
)

// ErrNotStreaming is returned by Read before the part headers were consumed.
var ErrNotStreaming = errors.New("formdata: decoder is not streaming a body")

type State int

const (
	ExpectBoundaryLine State = iota
	ExpectContentDisposition
	ExpectBlankLine
	StreamingBody
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case ExpectBoundaryLine:
		return "expect_boundary_line"
	case ExpectContentDisposition:
		return "expect_content_disposition"
	case ExpectBlankLine:
		return "expect_blank_line"
	case StreamingBody:
		return "streaming_body"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Part describes the file part found in the body.
type Part struct {
	FieldName   string
	FileName    string
	ContentType string
}

// Boundary extracts the boundary parameter of a multipart/form-data Content-Type.
func Boundary(contentType string) (string, error) {
	if contentType == "" {
		return "", fmt.Errorf("%w: missing content-type", cloudcity.ErrMalformedRequest)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: parse content-type: %w", cloudcity.ErrMalformedRequest, err)
	}

	if mediaType != "multipart/form-data" {
		return "", fmt.Errorf("%w: content-type %s is not multipart/form-data", cloudcity.ErrMalformedRequest, mediaType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return "", fmt.Errorf("%w: content-type has no boundary", cloudcity.ErrMalformedRequest)
	}

	if len(boundary) > 70 {
		return "", fmt.Errorf("%w: boundary longer than 70 bytes", cloudcity.ErrMalformedRequest)
	}

	return boundary, nil
}

// Decoder reads one file part from a multipart/form-data stream.
type Decoder struct {
	r         *bufio.Reader
	delimiter []byte
	state     State
	part      Part
	err       error

	// readErr is a source error seen together with data, reported on the next read.
	readErr error

	// pending is the look-behind line, out holds released bytes not yet returned.
	pending     []byte
	out         []byte
	atLineStart bool
	written     int64
}

// NewDecoder returns a Decoder reading at most contentLength bytes from r.
// A negative contentLength leaves the stream unbounded; the caller must then
// bound r itself (for example with http.MaxBytesReader).
func NewDecoder(r io.Reader, boundary string, contentLength int64) *Decoder {
	if contentLength >= 0 {
		r = io.LimitReader(r, contentLength)
	}
	return &Decoder{
		r:         bufio.NewReaderSize(r, bufferSize),
		delimiter: []byte("--" + boundary),
		state:     ExpectBoundaryLine,
	}
}

// State reports where the decoder is.
func (d *Decoder) State() State {
	return d.state
}

// Part returns the part headers once NextPart succeeded.
func (d *Decoder) Part() Part {
	return d.part
}

// Written reports how many body bytes were released through Read.
func (d *Decoder) Written() int64 {
	return d.written
}

// Err returns the error that moved the decoder to Failed.
func (d *Decoder) Err() error {
	return d.err
}

// NextPart consumes the opening boundary and the part headers and leaves the
// decoder streaming the file body. It fails with cloudcity.ErrMalformedRequest when the
// body does not start with the boundary or the part has no filename.
func (d *Decoder) NextPart() (Part, error) {
	if d.state != ExpectBoundaryLine {
		return Part{}, fmt.Errorf("formdata: next part in state %s", d.state)
	}

	if err := d.expectBoundary(); err != nil {
		return Part{}, d.fail(err)
	}

	if err := d.readHeaders(); err != nil {
		return Part{}, d.fail(err)
	}

	d.state = StreamingBody
	d.atLineStart = true
	return d.part, nil
}

func (d *Decoder) expectBoundary() error {
	line, complete, err := d.readLine()
	if err != nil {
		return malformed("read boundary line: %w", unexpectedEOF(err))
	}

	closing, ok := d.boundaryLine(line)
	if !ok || !complete {
		return malformed("content does not begin with boundary")
	}
	if closing {
		return malformed("body holds no parts")
	}

	d.state = ExpectContentDisposition
	return nil
}

func (d *Decoder) readHeaders() error {
	for range maxHeaderLines {
		line, complete, err := d.readLine()
		if err != nil {
			return malformed("read part header: %w", unexpectedEOF(err))
		}
		if !complete && d.readErr != nil {
			return malformed("read part header: %w", unexpectedEOF(d.readErr))
		}
		if !complete || len(line) > maxHeaderLine {
			return malformed("part header line too long")
		}

		text := strings.TrimRight(string(line), "\r\n")
		if text == "" {
			if d.state == ExpectContentDisposition {
				return malformed("part has no content-disposition header")
			}
			return nil
		}

		name, value, found := strings.Cut(text, ":")
		if !found {
			return malformed("invalid part header %q", text)
		}
		value = strings.TrimSpace(value)

		switch textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(name)) {
		case "Content-Disposition":
			if err := d.parseDisposition(value); err != nil {
				return err
			}
			d.state = ExpectBlankLine
		case "Content-Type":
			d.part.ContentType = value
		}
	}

	return malformed("more than %d part header lines", maxHeaderLines)
}

func (d *Decoder) parseDisposition(value string) error {
	disposition, params, err := mime.ParseMediaType(value)
	if err != nil {
		return malformed("parse content-disposition: %w", err)
	}
	if disposition != "form-data" {
		return malformed("content-disposition %q is not form-data", disposition)
	}

	fileName, ok := params["filename"]
	if !ok || fileName == "" {
		return malformed("can't find out file name")
	}

	d.part.FieldName = params["name"]
	d.part.FileName = fileName
	return nil
}

// Read streams the file body. It returns io.EOF once the closing boundary was seen
// and cloudcity.ErrMalformedRequest when the data ends before it.
func (d *Decoder) Read(p []byte) (int, error) {
	for len(d.out) == 0 {
		switch d.state {
		case StreamingBody:
		case Complete:
			return 0, io.EOF
		case Failed:
			return 0, d.err
		default:
			return 0, ErrNotStreaming
		}

		if err := d.step(); err != nil {
			return 0, d.fail(err)
		}
	}

	n := copy(p, d.out)
	d.out = d.out[n:]
	d.written += int64(n)
	return n, nil
}

// step reads one line and either releases the look-behind line or, when the
// line is the boundary, releases it without its line terminator and completes.
func (d *Decoder) step() error {
	line, complete, err := d.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return malformed("unexpected end of data")
		}
		return fmt.Errorf("formdata: read body: %w", err)
	}

	if d.atLineStart {
		if _, ok := d.boundaryLine(line); ok {
			last := bytes.TrimSuffix(d.pending, []byte("\n"))
			last = bytes.TrimSuffix(last, []byte("\r"))
			d.out = last
			d.pending = nil
			d.state = Complete
			return nil
		}
	}

	d.out = d.pending
	d.pending = line
	d.atLineStart = complete
	return nil
}

// readLine returns the next line including its terminator. complete is false when
// the line was cut at the buffer size or at the end of the stream. The returned
// slice is owned by the caller.
func (d *Decoder) readLine() ([]byte, bool, error) {
	if d.readErr != nil {
		return nil, false, d.readErr
	}

	chunk, err := d.r.ReadSlice('\n')
	if len(chunk) == 0 {
		return nil, false, err
	}

	line := bytes.Clone(chunk)
	switch {
	case err == nil:
		return line, true, nil
	case errors.Is(err, bufio.ErrBufferFull):
		return line, false, nil
	default:
		d.readErr = err
		return line, false, nil
	}
}

// boundaryLine reports whether line is a delimiter line and whether it is the closing one.
func (d *Decoder) boundaryLine(line []byte) (closing bool, ok bool) {
	if !bytes.HasPrefix(line, d.delimiter) {
		return false, false
	}

	rest := line[len(d.delimiter):]
	rest = bytes.TrimRight(rest, "\r\n")
	if bytes.HasPrefix(rest, []byte("--")) {
		closing = true
		rest = rest[2:]
	}

	// transport padding
	if len(bytes.Trim(rest, " \t")) != 0 {
		return false, false
	}

	return closing, true
}

func (d *Decoder) fail(err error) error {
	d.state = Failed
	d.err = err
	d.pending = nil
	d.out = nil
	return err
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{cloudcity.ErrMalformedRequest}, args...)...)
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
