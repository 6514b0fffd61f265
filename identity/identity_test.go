package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	id := New(42)
	assert.True(t, id.Valid())
	assert.Equal(t, int64(42), id.Value())
	assert.Nil(t, id.Ref())
}

func TestNew_ZeroHandleIsInvalid(t *testing.T) {
	assert.False(t, New(0).Valid())
	assert.True(t, New(0).Equal(Invalid))
}

func TestInvalid_Sentinel(t *testing.T) {
	assert.False(t, Invalid.Valid())
	assert.Equal(t, int64(0), Invalid.Value())
	assert.Equal(t, "identity(invalid)", Invalid.String())
}

func TestFromHandle_RefDoesNotAffectEquality(t *testing.T) {
	type entity struct{ name string }
	a := FromHandle(7, &entity{name: "a"})
	b := FromHandle(7, &entity{name: "b"})
	c := New(7)

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(c))
	assert.Equal(t, a.Key(), b.Key())

	ref, ok := a.Ref().(*entity)
	assert.True(t, ok)
	assert.Equal(t, "a", ref.name)
}

func TestOrdering(t *testing.T) {
	lo := New(1)
	hi := New(2)

	assert.True(t, lo.Less(hi))
	assert.False(t, hi.Less(lo))
	assert.False(t, lo.Less(lo))

	assert.Equal(t, -1, lo.Compare(hi))
	assert.Equal(t, 1, hi.Compare(lo))
	assert.Equal(t, 0, lo.Compare(New(1)))
}

func TestString(t *testing.T) {
	assert.Equal(t, "identity(42)", New(42).String())
	assert.Equal(t, "identity.New(42)", New(42).GoString())
}
