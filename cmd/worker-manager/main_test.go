// cmd/worker-manager/main_test.go
package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCloseWithTimeout_CompletesBeforeDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	called := false
	closeWithTimeout(ctx, func() error {
		called = true
		return nil
	}, zap.NewNop())

	assert.True(t, called)
}

func TestCloseWithTimeout_ReturnsWhenDeadlineExpires(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	blocked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		closeWithTimeout(ctx, func() error {
			<-blocked
			return errors.New("never reached in time")
		}, zap.NewNop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("closeWithTimeout did not give up at the deadline")
	}
	close(blocked)
}
