package keylock

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestDoSerializesSameKey(t *testing.T) {
	var l Locker
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(context.Background(), "c1", func(context.Context) error {
				// load, yield, save
				v := counter
				runtime.Gosched()
				time.Sleep(100 * time.Microsecond)
				counter = v + 1
				return nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50 (lost update)", counter)
	}
	if l.Len() != 0 {
		t.Fatalf("Len = %d after all holders left, want 0", l.Len())
	}
}

func TestDoFIFO(t *testing.T) {
	var l Locker
	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = l.Do(context.Background(), "c1", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = l.Do(context.Background(), "c1", func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}(i)
		// let waiter i queue up before the next one arrives
		time.Sleep(20 * time.Millisecond)
	}
	close(release)
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want arrival order", order)
		}
	}
}

func TestDoDifferentKeysRunConcurrently(t *testing.T) {
	var l Locker
	inA := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- l.Do(context.Background(), "a", func(context.Context) error {
			close(inA)
			time.Sleep(50 * time.Millisecond)
			return nil
		})
	}()
	<-inA

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, "b", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("key b blocked by key a: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestDoContextCanceledWhileWaiting(t *testing.T) {
	var l Locker
	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = l.Do(context.Background(), "c1", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ran := false
	err := l.Do(ctx, "c1", func(context.Context) error { ran = true; return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if ran {
		t.Fatal("fn must not run when the lock was never acquired")
	}
	close(release)
}

func TestDoReleasesOnErrorAndPanic(t *testing.T) {
	var l Locker
	boom := errors.New("boom")
	if err := l.Do(context.Background(), "c1", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	func() {
		defer func() { _ = recover() }()
		_ = l.Do(context.Background(), "c1", func(context.Context) error { panic("handler bug") })
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, "c1", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("lock still held after error/panic: %v", err)
	}
}

func TestDoReportsWait(t *testing.T) {
	var got []string
	l := New(func(key string, d time.Duration) {
		if d < 0 {
			t.Errorf("negative wait %v", d)
		}
		got = append(got, key)
	})
	_ = l.Do(context.Background(), "c1", func(context.Context) error { return nil })
	if len(got) != 1 || got[0] != "c1" {
		t.Fatalf("OnWait calls = %v", got)
	}
}

func TestFnContextNotCanceledMidFlight(t *testing.T) {
	var l Locker
	ctx, cancel := context.WithCancel(context.Background())
	err := l.Do(ctx, "c1", func(inner context.Context) error {
		cancel()
		return inner.Err()
	})
	if err != nil {
		t.Fatalf("fn context was canceled with the caller: %v", err)
	}
}
