package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigatorKeepsSamePage(t *testing.T) {
	nav := NewNavigator(context.Background())
	first := nav.Enter("/analytics")
	first.SetValue("k", 1)

	again := nav.Enter("/analytics")
	assert.Same(t, first, again)
	assert.Equal(t, 1, again.Value("k"))
	assert.True(t, again.Alive())
}

func TestNavigatorClosesPreviousPage(t *testing.T) {
	nav := NewNavigator(context.Background())
	first := nav.Enter("/problems/1")
	closed := 0
	first.OnClose(func() { closed++ })

	second := nav.Enter("/problems/2")
	assert.NotSame(t, first, second)
	assert.False(t, first.Alive())
	assert.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.Equal(t, 1, closed)
	assert.Same(t, second, nav.Current())

	nav.Close()
	assert.False(t, second.Alive())
	assert.Nil(t, nav.Current())
	assert.Equal(t, 1, closed)
}

func TestReenteringClosedPageOpensNewLifetime(t *testing.T) {
	nav := NewNavigator(context.Background())
	first := nav.Enter("/inbox")
	nav.Close()

	next := nav.Enter("/inbox")
	require.NotSame(t, first, next)
	assert.True(t, next.Alive())
	assert.Nil(t, next.Value("anything"))
}
