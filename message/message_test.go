package message

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/routekit/errors"
	"github.com/c360/routekit/identity"
)

type ping struct{ Value int }

func (p ping) AcceptUntargeted(v Visitor) error { return v.EmitUntargeted(p) }

type heal struct{ Amount int }

func (h heal) AcceptTargeted(v Visitor, target identity.ID) error {
	return v.EmitTargeted(target, h)
}

type damage struct{ Amount int }

func (d damage) AcceptBroadcast(v Visitor, source identity.ID) error {
	return v.EmitBroadcast(source, d)
}

type untagged struct{}

// twoFaced carries two capability tags.
type twoFaced struct{}

func (m twoFaced) AcceptUntargeted(v Visitor) error { return v.EmitUntargeted(m) }
func (m twoFaced) AcceptTargeted(v Visitor, target identity.ID) error {
	return v.EmitTargeted(target, m)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		msg  any
		want Kind
	}{
		{name: "untargeted", msg: ping{}, want: KindUntargeted},
		{name: "targeted", msg: heal{}, want: KindTargeted},
		{name: "broadcast", msg: damage{}, want: KindBroadcast},
		{name: "pointer payload", msg: &ping{}, want: KindUntargeted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KindOf(tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindOf_Untagged(t *testing.T) {
	_, err := KindOf(untagged{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedShape)
}

func TestKindOf_Nil(t *testing.T) {
	_, err := KindOf(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedShape)
}

func TestKindOf_Ambiguous(t *testing.T) {
	_, err := KindOf(twoFaced{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAmbiguousShape)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "untargeted", KindUntargeted.String())
	assert.Equal(t, "targeted", KindTargeted.String())
	assert.Equal(t, "broadcast", KindBroadcast.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, reflect.TypeOf(ping{}), TypeOf[ping]())
	assert.Equal(t, TypeOf[ping](), TypeOf[ping]())
	assert.NotEqual(t, TypeOf[ping](), TypeOf[heal]())
}

func TestConcreteType_UnwrapsPointer(t *testing.T) {
	assert.Equal(t, TypeOf[ping](), ConcreteType(ping{}))
	assert.Equal(t, TypeOf[ping](), ConcreteType(&ping{}))
	assert.Nil(t, ConcreteType(nil))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "github.com/c360/routekit/message.ping", TypeName(TypeOf[ping]()))
	assert.Equal(t, "<nil>", TypeName(nil))
	assert.Equal(t, "int", TypeName(reflect.TypeOf(0)))
}
