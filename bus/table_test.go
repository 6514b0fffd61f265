package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/routekit/errors"
	"github.com/c360/routekit/identity"
)

func TestHandlerTableFor_RequiresValidOwner(t *testing.T) {
	b := New()

	_, err := b.HandlerTableFor(identity.Invalid)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidIdentity)

	owner := identity.New(1)
	table, err := b.HandlerTableFor(owner)
	require.NoError(t, err)
	assert.True(t, table.Owner().Equal(owner))

	again, err := b.HandlerTableFor(owner)
	require.NoError(t, err)
	assert.Same(t, table, again, "one table per owner")
}

func TestHandlerTable_SetActiveSkipsDelivery(t *testing.T) {
	b := New()
	owner := identity.New(2)

	calls := 0
	_, err := b.Register(NewUntargetedHandler[ping](func(*ping) { calls++ }, 0).WithOwner(owner))
	require.NoError(t, err)

	table, err := b.HandlerTableFor(owner)
	require.NoError(t, err)
	require.True(t, table.Active())

	require.NoError(t, EmitUntargeted(b, ping{}))
	assert.Equal(t, 1, calls)

	table.SetActive(false)
	require.NoError(t, EmitUntargeted(b, ping{}))
	assert.Equal(t, 1, calls, "inactive table must not deliver")
	assert.Equal(t, uint64(1), b.Stats().LiveRegistrations,
		"deactivation keeps the registration on the bus")

	table.SetActive(true)
	require.NoError(t, EmitUntargeted(b, ping{}))
	assert.Equal(t, 2, calls)
}

func TestHandlerTable_InactiveKeyedDeliveryCountsAsMiss(t *testing.T) {
	b := New()
	owner := identity.New(3)
	target := identity.New(4)

	_, err := b.Register(NewTargetedHandler[heal](target, func(identity.ID, *heal) {}, 0).WithOwner(owner))
	require.NoError(t, err)

	table, err := b.HandlerTableFor(owner)
	require.NoError(t, err)
	table.SetActive(false)

	require.NoError(t, EmitTargeted(b, target, heal{}))
	assert.Equal(t, uint64(1), b.Stats().RoutingMisses)
}

func TestHandlerTable_Teardown(t *testing.T) {
	b := New()
	owner := identity.New(5)

	calls := 0
	_, err := b.Register(NewUntargetedHandler[ping](func(*ping) { calls++ }, 0).WithOwner(owner))
	require.NoError(t, err)
	_, err = b.Register(NewTargetedHandler[heal](identity.New(6), func(identity.ID, *heal) { calls++ }, 0).WithOwner(owner))
	require.NoError(t, err)

	table, err := b.HandlerTableFor(owner)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	table.Teardown()
	table.Teardown()

	assert.Zero(t, b.Stats().LiveRegistrations)
	require.NoError(t, EmitUntargeted(b, ping{}))
	require.NoError(t, EmitTargeted(b, identity.New(6), heal{}))
	assert.Zero(t, calls)
}

func TestHandlerTable_RegistrationAfterTeardownGetsFreshTable(t *testing.T) {
	b := New()
	owner := identity.New(7)

	old, err := b.HandlerTableFor(owner)
	require.NoError(t, err)
	old.Teardown()

	// The owner coming back gets a fresh table rather than the torn one.
	calls := 0
	_, err = b.Register(NewUntargetedHandler[ping](func(*ping) { calls++ }, 0).WithOwner(owner))
	require.NoError(t, err)

	fresh, err := b.HandlerTableFor(owner)
	require.NoError(t, err)
	assert.NotSame(t, old, fresh)
	assert.Equal(t, 1, fresh.Len())

	require.NoError(t, EmitUntargeted(b, ping{}))
	assert.Equal(t, 1, calls)
}

func TestHandlerTable_DirectInvoke(t *testing.T) {
	b := New()
	owner := identity.New(8)

	var seen int
	reg, err := b.Register(NewUntargetedHandler[ping](func(p *ping) { seen = p.Value }, 0).WithOwner(owner))
	require.NoError(t, err)

	table, err := b.HandlerTableFor(owner)
	require.NoError(t, err)

	assert.True(t, table.HandleUntargetedMessage(reg.Handle, &ping{Value: 12}))
	assert.Equal(t, 12, seen)

	assert.False(t, table.HandleUntargetedMessage(NewHandle(), &ping{Value: 13}),
		"unknown handle must miss")
	assert.Equal(t, 12, seen)
}

func TestHandlerTable_AnonymousRegistrationsBypassTables(t *testing.T) {
	b := New()

	calls := 0
	_, err := RegisterUntargeted[ping](b, func(*ping) { calls++ }, 0)
	require.NoError(t, err)

	// No owner, so no table gates the delivery.
	require.NoError(t, EmitUntargeted(b, ping{}))
	assert.Equal(t, 1, calls)
}
