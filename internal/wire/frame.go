// Package wire implements the bit-exact identity frame codec: an 8-byte
// header followed by eight fixed-width, NUL-padded body fields. Frame and
// FrameHeader are views over a caller-owned byte slice; neither type owns
// heap memory of its own.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// FieldCapacity is the fixed byte width of every body field.
	FieldCapacity = 64
	numFields     = 8
	// BlockLength is the fixed body size in bytes: numFields * FieldCapacity.
	BlockLength = numFields * FieldCapacity
	// HeaderLength is the fixed header size in bytes.
	HeaderLength = 8
	// FrameLength is the total wire size of one record: header + body.
	FrameLength = HeaderLength + BlockLength

	// SchemaID identifies the identity message schema.
	SchemaID uint16 = 1
	// Version is the only supported schema version.
	Version uint16 = 1
	// TemplateID identifies the identity frame template.
	TemplateID uint16 = 1
)

// Message-type discriminators carried in the msg field.
const (
	MsgVerificationRequest  = "Identity Verification Request"
	MsgAddUserRequest       = "Add User in System"
	MsgVerificationResponse = "Identity Verification Response"
)

// DecodeError is returned by Decode when the input cannot be interpreted as
// a valid identity frame.
type DecodeError struct {
	Kind string
	// TemplateID or Version, populated for the kinds that carry one.
	Value uint16
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case "short_buffer":
		return "wire: short buffer"
	case "unknown_template":
		return fmt.Sprintf("wire: unknown template id %d", e.Value)
	case "unsupported_version":
		return fmt.Sprintf("wire: unsupported version %d", e.Value)
	case "field_too_long":
		return "wire: field exceeds capacity"
	default:
		return "wire: decode error"
	}
}

// Sentinel decode error kinds, matched with errors.Is against the Kind
// carried on DecodeError.
var (
	ErrShortBuffer        = &DecodeError{Kind: "short_buffer"}
	ErrUnknownTemplate    = &DecodeError{Kind: "unknown_template"}
	ErrUnsupportedVersion = &DecodeError{Kind: "unsupported_version"}
	ErrFieldTooLong       = &DecodeError{Kind: "field_too_long"}
)

func (e *DecodeError) Is(target error) bool {
	var de *DecodeError
	if !errors.As(target, &de) {
		return false
	}
	return de.Kind == e.Kind
}

// FrameHeader is an 8-byte, little-endian view: block_length, template_id,
// schema_id, version, in that order.
type FrameHeader struct {
	BlockLength uint16
	TemplateID  uint16
	SchemaID    uint16
	Version     uint16
}

// DecodeHeader reads a FrameHeader from the first 8 bytes of buf.
func DecodeHeader(buf []byte) (FrameHeader, error) {
	if len(buf) < HeaderLength {
		return FrameHeader{}, ErrShortBuffer
	}
	return FrameHeader{
		BlockLength: binary.LittleEndian.Uint16(buf[0:2]),
		TemplateID:  binary.LittleEndian.Uint16(buf[2:4]),
		SchemaID:    binary.LittleEndian.Uint16(buf[4:6]),
		Version:     binary.LittleEndian.Uint16(buf[6:8]),
	}, nil
}

func (h FrameHeader) encode(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], h.BlockLength)
	binary.LittleEndian.PutUint16(buf[2:4], h.TemplateID)
	binary.LittleEndian.PutUint16(buf[4:6], h.SchemaID)
	binary.LittleEndian.PutUint16(buf[6:8], h.Version)
}

// field offsets within the body, in declaration order.
const (
	fieldMsg = iota
	fieldType
	fieldID
	fieldName
	fieldDateOfIssue
	fieldDateOfExpiry
	fieldAddress
	fieldVerified
)

// Frame is a decode view over a caller-owned byte buffer. It owns no
// memory: field accessors slice directly into the backing buffer, trimming
// at the first NUL byte.
type Frame struct {
	Header FrameHeader
	body   []byte // exactly BlockLength bytes, aliases the input buffer
}

func fieldSlice(body []byte, field int) []byte {
	start := field * FieldCapacity
	return body[start : start+FieldCapacity]
}

func trim(raw []byte) string {
	if i := indexByte(raw, 0); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// Msg returns the operation discriminator field, trimmed at the first NUL.
func (f Frame) Msg() string { return trim(fieldSlice(f.body, fieldMsg)) }

// Type returns the document type field, trimmed at the first NUL.
func (f Frame) Type() string { return trim(fieldSlice(f.body, fieldType)) }

// ID returns the identity number field, trimmed at the first NUL.
func (f Frame) ID() string { return trim(fieldSlice(f.body, fieldID)) }

// Name returns the full name field, trimmed at the first NUL.
func (f Frame) Name() string { return trim(fieldSlice(f.body, fieldName)) }

// DateOfIssue returns the date-of-issue field, trimmed at the first NUL.
func (f Frame) DateOfIssue() string { return trim(fieldSlice(f.body, fieldDateOfIssue)) }

// DateOfExpiry returns the date-of-expiry field, trimmed at the first NUL.
func (f Frame) DateOfExpiry() string { return trim(fieldSlice(f.body, fieldDateOfExpiry)) }

// Address returns the address field, trimmed at the first NUL.
func (f Frame) Address() string { return trim(fieldSlice(f.body, fieldAddress)) }

// VerifiedRaw returns the raw (trimmed) text of the verified field.
func (f Frame) VerifiedRaw() string { return trim(fieldSlice(f.body, fieldVerified)) }

// Verified parses the verified field as a boolean. Per spec, "true"/"false"
// (case-insensitive) or integer 0/1 are accepted; anything else is a
// decode error.
func (f Frame) Verified() (bool, error) {
	raw := f.VerifiedRaw()
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		switch n {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	}
	return false, fmt.Errorf("wire: invalid verified value %q", raw)
}

// Decode interprets in as an identity frame. It requires at least
// HeaderLength bytes to read the header, then at least
// HeaderLength+header.BlockLength bytes for the body, and requires
// header.TemplateID and header.Version to match the supported constants. A
// header.BlockLength smaller than BlockLength is rejected as ErrShortBuffer;
// the returned view covers exactly the first BlockLength body bytes.
func Decode(in []byte) (Frame, error) {
	header, err := DecodeHeader(in)
	if err != nil {
		return Frame{}, err
	}
	if header.TemplateID != TemplateID {
		return Frame{}, &DecodeError{Kind: "unknown_template", Value: header.TemplateID}
	}
	if header.Version != Version {
		return Frame{}, &DecodeError{Kind: "unsupported_version", Value: header.Version}
	}
	if int(header.BlockLength) < BlockLength {
		return Frame{}, ErrShortBuffer
	}
	need := HeaderLength + int(header.BlockLength)
	if len(in) < need {
		return Frame{}, ErrShortBuffer
	}
	body := in[HeaderLength : HeaderLength+BlockLength]
	return Frame{Header: header, body: body}, nil
}

// Fields is the plain-value form of a Frame, used to build frames for
// Encode without requiring a caller-owned buffer view first.
type Fields struct {
	Msg          string
	Type         string
	ID           string
	Name         string
	DateOfIssue  string
	DateOfExpiry string
	Address      string
	Verified     string
}

func putField(body []byte, field int, value string) error {
	if len(value) > FieldCapacity {
		return ErrFieldTooLong
	}
	dst := fieldSlice(body, field)
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, value)
	return nil
}

// Encode writes a full 520-byte wire record (header + body) for fields into
// out, returning the number of bytes written. out must be at least
// FrameLength bytes long.
func Encode(out []byte, fields Fields) (int, error) {
	if len(out) < FrameLength {
		return 0, ErrShortBuffer
	}
	header := FrameHeader{
		BlockLength: BlockLength,
		TemplateID:  TemplateID,
		SchemaID:    SchemaID,
		Version:     Version,
	}
	header.encode(out[:HeaderLength])

	body := out[HeaderLength:FrameLength]
	values := [numFields]string{
		fieldMsg:          fields.Msg,
		fieldType:         fields.Type,
		fieldID:           fields.ID,
		fieldName:         fields.Name,
		fieldDateOfIssue:  fields.DateOfIssue,
		fieldDateOfExpiry: fields.DateOfExpiry,
		fieldAddress:      fields.Address,
		fieldVerified:     fields.Verified,
	}
	for i, v := range values {
		if err := putField(body, i, v); err != nil {
			return 0, err
		}
	}
	return FrameLength, nil
}

// ToFields snapshots a decoded Frame's body into a plain Fields value, e.g.
// to build a reply frame by copying most fields from a request.
func (f Frame) ToFields() Fields {
	return Fields{
		Msg:          f.Msg(),
		Type:         f.Type(),
		ID:           f.ID(),
		Name:         f.Name(),
		DateOfIssue:  f.DateOfIssue(),
		DateOfExpiry: f.DateOfExpiry(),
		Address:      f.Address(),
		Verified:     f.VerifiedRaw(),
	}
}
