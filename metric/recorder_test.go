package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/routekit/bus"
	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
)

type blip struct {
	N int
}

func (b blip) AcceptUntargeted(v message.Visitor) error {
	return v.EmitUntargeted(b)
}

type burst struct {
	N int
}

func (b burst) AcceptTargeted(v message.Visitor, target identity.ID) error {
	return v.EmitTargeted(target, b)
}

func instrumentedBus(t *testing.T) (*bus.Bus, *Recorder) {
	t.Helper()
	r := NewRecorder()
	return bus.New(bus.WithHooks(r.Hooks())), r
}

func TestRecorder_CountsEmits(t *testing.T) {
	b, r := instrumentedBus(t)

	_, err := bus.RegisterUntargeted[blip](b, func(*blip) {}, 0)
	require.NoError(t, err)

	require.NoError(t, bus.EmitUntargeted(b, blip{}))
	require.NoError(t, bus.EmitUntargeted(b, blip{}))

	typeName := message.TypeName(message.TypeOf[blip]())
	assert.Equal(t, float64(2),
		testutil.ToFloat64(r.EmitsTotal.WithLabelValues("untargeted", typeName)))
	assert.Equal(t, float64(2),
		testutil.ToFloat64(r.HandlersTotal.WithLabelValues("untargeted", typeName)))
}

func TestRecorder_CountsVetoes(t *testing.T) {
	b, r := instrumentedBus(t)

	_, err := bus.RegisterUntargetedInterceptor[blip](b, func(m *blip) bool {
		return m.N >= 0
	}, 0)
	require.NoError(t, err)

	require.NoError(t, bus.EmitUntargeted(b, blip{N: -1}))
	require.NoError(t, bus.EmitUntargeted(b, blip{N: 1}))

	typeName := message.TypeName(message.TypeOf[blip]())
	assert.Equal(t, float64(1),
		testutil.ToFloat64(r.VetoesTotal.WithLabelValues("untargeted", typeName)))
}

func TestRecorder_CountsRoutingMisses(t *testing.T) {
	b, r := instrumentedBus(t)

	require.NoError(t, bus.EmitTargeted(b, identity.New(1), burst{}))

	typeName := message.TypeName(message.TypeOf[burst]())
	assert.Equal(t, float64(1),
		testutil.ToFloat64(r.RoutingMissTotal.WithLabelValues("targeted", typeName)))
}

func TestRecorder_TracksLiveRegistrations(t *testing.T) {
	b, r := instrumentedBus(t)

	reg, err := bus.RegisterUntargeted[blip](b, func(*blip) {}, 0)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(r.LiveRegistrations))

	reg.Deregister()
	assert.Equal(t, float64(0), testutil.ToFloat64(r.LiveRegistrations))
}

func TestRecorder_IsolatedRegistries(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	assert.NotSame(t, a.Registry(), b.Registry())

	a.LiveRegistrations.Inc()
	assert.Equal(t, float64(0), testutil.ToFloat64(b.LiveRegistrations))
}

func TestRecorder_ObservesDispatchDuration(t *testing.T) {
	b, r := instrumentedBus(t)

	require.NoError(t, bus.EmitUntargeted(b, blip{}))
	count := testutil.CollectAndCount(r.DispatchDuration)
	assert.Equal(t, 1, count, "one kind label observed")
}
