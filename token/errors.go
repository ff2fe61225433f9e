package token

import "fmt"

// ScanError is returned when the scanner requires a specific byte (a
// delimiter, a digit, the start of a value) and finds something else.
type ScanError struct {
	Byte   byte
	Offset int
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("token: unexpected byte %q at offset %d", e.Byte, e.Offset)
}

// UTF8Error is returned when an object key's raw bytes are not valid UTF-8.
type UTF8Error struct {
	Offset int
}

func (e *UTF8Error) Error() string {
	return fmt.Sprintf("token: invalid utf-8 in key at offset %d", e.Offset)
}

// InputTerminatedError is returned by Terminate when the scanner is in the
// middle of a container (object or array still open) and cannot produce a
// clean end of input.
type InputTerminatedError struct {
	Offset int
}

func (e *InputTerminatedError) Error() string {
	return fmt.Sprintf("token: input terminated mid-document at offset %d", e.Offset)
}
