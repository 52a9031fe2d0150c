package fifoqueue_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/concurrent-transfers-go/internal/fifoqueue"
)

func Test_Queue_DeliversInPushOrder(t *testing.T) {
	q := fifoqueue.New[string]()
	require.EqualValues(t, 0, q.Len())

	require.True(t, q.Push("one"))
	require.True(t, q.Push("two"))
	require.EqualValues(t, 2, q.Len())
	q.Close()

	got := make([]string, 0)
	q.Consume(func(elem string) {
		got = append(got, elem)
	})

	require.Equal(t, []string{"one", "two"}, got)
	require.EqualValues(t, 0, q.Len())
}

func Test_Queue_DropsPushAfterClose(t *testing.T) {
	q := fifoqueue.New[int]()
	q.Close()

	require.False(t, q.Push(1), "push after close should be rejected")
	require.EqualValues(t, 0, q.Len())
}

func Test_Queue_ConsumeReturnsOnCloseOfEmptyQueue(t *testing.T) {
	q := fifoqueue.New[int]()

	done := make(chan struct{})
	go func() {
		q.Consume(func(int) {})
		close(done)
	}()

	q.Close()
	<-done
}

func Test_Queue_ManyProducersOneConsumer(t *testing.T) {
	const producers = 8
	const perProducer = 1000

	q := fifoqueue.New[int]()

	var consumed int
	done := make(chan struct{})
	go func() {
		q.Consume(func(int) {
			consumed++
		})
		close(done)
	}()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}

	wg.Wait()
	q.Close()
	<-done

	require.Equal(t, producers*perProducer, consumed)
}
