package notify

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastPublishWins(t *testing.T) {
	ch := NewChannel()
	for i := 1; i <= 5; i++ {
		ch.Info(fmt.Sprintf("message %d", i))
	}

	n, ok := ch.Current()
	require.True(t, ok)
	assert.Equal(t, "message 5", n.Message)
	assert.Equal(t, KindInfo, n.Kind)
}

func TestKinds(t *testing.T) {
	ch := NewChannel()
	tests := []struct {
		publish func(string) Notification
		want    Kind
	}{
		{ch.Info, KindInfo},
		{ch.Success, KindSuccess},
		{ch.Warning, KindWarning},
		{ch.Error, KindError},
	}
	for _, tt := range tests {
		n := tt.publish("x")
		assert.Equal(t, tt.want, n.Kind)
		assert.NotEqual(t, [16]byte{}, [16]byte(n.ID))
	}
}

func TestDismissAndTake(t *testing.T) {
	ch := NewChannel()
	_, ok := ch.Current()
	assert.False(t, ok)

	ch.Error("boom")
	ch.Dismiss()
	_, ok = ch.Current()
	assert.False(t, ok)

	ch.Success("done")
	n, ok := ch.Take()
	require.True(t, ok)
	assert.Equal(t, "done", n.Message)
	_, ok = ch.Take()
	assert.False(t, ok, "take shows a banner once")
}

func TestSubscribe(t *testing.T) {
	ch := NewChannel()
	var got []string
	cancel := ch.Subscribe(func(n Notification) { got = append(got, n.Message) })

	ch.Info("a")
	ch.Warning("b")
	cancel()
	cancel()
	ch.Info("c")

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestConcurrentPublish(t *testing.T) {
	ch := NewChannel()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ch.Info(fmt.Sprint(i))
		}(i)
	}
	wg.Wait()

	_, ok := ch.Current()
	assert.True(t, ok)
}

func TestSubscribersSeePublishOrder(t *testing.T) {
	ch := NewChannel()
	var last string
	ch.Subscribe(func(n Notification) { last = n.Message })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ch.Info(fmt.Sprint(i))
		}(i)
	}
	wg.Wait()

	n, ok := ch.Current()
	require.True(t, ok)
	assert.Equal(t, n.Message, last)
}
