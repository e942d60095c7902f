// Package binview provides View, a read-only, non-owning window onto a
// contiguous run of bytes. It is the single input type accepted by the digest
// engine and the random generator, and it never copies or retains the data it
// describes: the referenced bytes must outlive every call that reads the view.
package binview

import (
	"bytes"
	"unsafe"
)

// View describes bytes owned elsewhere. The zero value is an empty view.
// Consumers must treat the bytes as read-only.
type View struct {
	data []byte
}

// Container is any type that exposes its contents as a contiguous byte slice,
// e.g. *bytes.Buffer or *secure.Bytes.
type Container interface {
	Bytes() []byte
}

// FromBytes wraps b without copying.
func FromBytes(b []byte) View {
	return View{data: b}
}

// FromString wraps the bytes backing s without copying.
func FromString(s string) View {
	if len(s) == 0 {
		return View{}
	}
	return View{data: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// FromPointer wraps n bytes starting at p. A nil pointer or a non-positive
// length yields an empty view; p is never dereferenced in that case.
func FromPointer(p *byte, n int) View {
	if p == nil || n <= 0 {
		return View{}
	}
	return View{data: unsafe.Slice(p, n)}
}

// FromNullTerminated wraps b up to, but not including, its first NUL byte.
// Without a NUL the whole slice is used.
func FromNullTerminated(b []byte) View {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return View{data: b[:i]}
	}
	return View{data: b}
}

// FromContainer wraps the contents of c. A nil container yields an empty view.
func FromContainer(c Container) View {
	if c == nil {
		return View{}
	}
	return View{data: c.Bytes()}
}

// IsEmpty reports whether the view covers no bytes.
func (v View) IsEmpty() bool {
	return len(v.data) == 0
}

// Len returns the number of bytes in the view.
func (v View) Len() int {
	return len(v.data)
}

// Bytes returns the viewed bytes. The slice aliases the original storage.
func (v View) Bytes() []byte {
	return v.data
}

// Equal reports whether the view holds exactly the bytes of s.
func (v View) Equal(s string) bool {
	return len(v.data) == len(s) && string(v.data) == s
}

// EqualBytes reports whether the view holds exactly the bytes of b.
func (v View) EqualBytes(b []byte) bool {
	return bytes.Equal(v.data, b)
}

// String returns a copy of the viewed bytes as a string.
func (v View) String() string {
	return string(v.data)
}
