// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	fake := Fake(epoch)
	channel := fake.After(10 * time.Second)

	fake.Advance(5 * time.Second)
	select {
	case <-channel:
		t.Fatal("waiter fired before its deadline")
	default:
	}

	fake.Advance(5 * time.Second)
	select {
	case fired := <-channel:
		if !fired.Equal(epoch.Add(10 * time.Second)) {
			t.Errorf("fired at %v, want %v", fired, epoch.Add(10*time.Second))
		}
	default:
		t.Fatal("waiter did not fire at its deadline")
	}
	if pending := fake.PendingWaiters(); pending != 0 {
		t.Errorf("PendingWaiters = %d, want 0", pending)
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fake := Fake(epoch)
	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) should receive immediately")
	}
	if pending := fake.PendingWaiters(); pending != 0 {
		t.Errorf("PendingWaiters = %d, want 0", pending)
	}
}

func TestFakeWaitForWaiters(t *testing.T) {
	fake := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-fake.After(time.Minute)
		close(done)
	}()

	fake.WaitForWaiters(1)
	fake.Advance(time.Minute)
	<-done
}

func TestUntil(t *testing.T) {
	fake := Fake(epoch)
	if got := Until(fake, epoch.Add(time.Hour)); got != time.Hour {
		t.Errorf("Until = %v, want 1h", got)
	}
	if got := Until(fake, epoch.Add(-time.Second)); got != -time.Second {
		t.Errorf("Until = %v, want -1s", got)
	}
}
