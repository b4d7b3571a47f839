package edge

import "unsafe"

// StringView is a non-owning {len, data} reference to byte data.
// It mirrors the C struct CCString and is never null-terminated.
type StringView struct {
	Len  uintptr
	Data *byte
}

// MakeView returns a view over s. The view is valid while s is reachable;
// callers passing it across the boundary must keep s alive for the call.
func MakeView(s string) StringView {
	if len(s) == 0 {
		return StringView{}
	}
	return StringView{Len: uintptr(len(s)), Data: unsafe.StringData(s)}
}

// MakeBytesView returns a view over b with the same lifetime rules as MakeView.
func MakeBytesView(b []byte) StringView {
	if len(b) == 0 {
		return StringView{}
	}
	return StringView{Len: uintptr(len(b)), Data: &b[0]}
}

// ViewToOwned copies the bytes referenced by v into a new string.
// A zero length or nil data pointer yields "" without touching memory.
func ViewToOwned(v StringView) string {
	if v.Len == 0 || v.Data == nil {
		return ""
	}
	return string(unsafe.Slice(v.Data, v.Len))
}

// OwnedToView copies s into buf and returns a view into buf.
// The caller sizes buf; a short buffer truncates the copy.
// An empty s returns the zero view.
func OwnedToView(s string, buf []byte) StringView {
	if len(s) == 0 {
		return StringView{}
	}
	n := copy(buf, s)
	if n == 0 {
		return StringView{}
	}
	return StringView{Len: uintptr(n), Data: &buf[0]}
}

// String implements fmt.Stringer by copying the viewed bytes.
func (v StringView) String() string {
	return ViewToOwned(v)
}

// Bytes returns the viewed bytes without copying.
// The slice aliases the view's backing memory.
func (v StringView) Bytes() []byte {
	if v.Len == 0 || v.Data == nil {
		return nil
	}
	return unsafe.Slice(v.Data, v.Len)
}
