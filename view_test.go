package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewToOwnedZeroLength(t *testing.T) {
	var b byte = 'x'
	assert.Equal(t, "", ViewToOwned(StringView{Len: 0, Data: &b}))
	// Len without data must not be dereferenced.
	assert.Equal(t, "", ViewToOwned(StringView{Len: 16, Data: nil}))
	assert.Equal(t, "", ViewToOwned(StringView{}))
}

func TestViewToOwnedCopies(t *testing.T) {
	src := []byte("serial-0001")
	s := ViewToOwned(MakeBytesView(src))
	src[0] = 'X'
	assert.Equal(t, "serial-0001", s)
}

func TestViewBinarySafe(t *testing.T) {
	src := "a\x00b\xffc"
	v := MakeView(src)
	require.Equal(t, uintptr(len(src)), v.Len)
	assert.Equal(t, src, v.String())
	assert.Equal(t, []byte(src), v.Bytes())
}

func TestOwnedToView(t *testing.T) {
	buf := make([]byte, 8)
	v := OwnedToView("", buf)
	assert.Equal(t, StringView{}, v)

	v = OwnedToView("abc", buf)
	assert.Equal(t, uintptr(3), v.Len)
	assert.Same(t, &buf[0], v.Data)
	assert.Equal(t, "abc", ViewToOwned(v))

	// Short buffers truncate.
	v = OwnedToView("abcdefghij", buf[:4])
	assert.Equal(t, "abcd", v.String())

	assert.Equal(t, StringView{}, OwnedToView("abc", nil))
}

func TestMakeViewEmpty(t *testing.T) {
	assert.Equal(t, StringView{}, MakeView(""))
	assert.Equal(t, StringView{}, MakeBytesView(nil))
	assert.Nil(t, StringView{}.Bytes())
}
