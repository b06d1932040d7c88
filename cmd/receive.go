// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// receiverManager handles receiver lifecycle and reconnection
type receiverManager struct {
	recv     Receiver
	connInfo string
	mu       sync.RWMutex
	done     chan struct{}
	stopOnce sync.Once
	exited   chan struct{}

	// reconnect reopens the transport; nil disables reconnecting
	reconnect func() (Receiver, error)

	onPayload   func(source, payload string)
	onLost      func(err error)
	onReconnect func(connInfo string)
}

func newReceiverManager(recv Receiver) *receiverManager {
	rm := &receiverManager{
		recv:     recv,
		connInfo: recv.String(),
		done:     make(chan struct{}),
	}
	if isStreamReceiver() {
		rm.reconnect = OpenReceiver
	}
	return rm
}

func (rm *receiverManager) getRecv() Receiver {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.recv
}

func (rm *receiverManager) setRecv(recv Receiver) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.recv = recv
	rm.connInfo = recv.String()
}

// ConnInfo describes the current receiver
func (rm *receiverManager) ConnInfo() string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.connInfo
}

func (rm *receiverManager) stopping() bool {
	select {
	case <-rm.done:
		return true
	default:
		return false
	}
}

// run delivers payloads until stop is called or the receiver fails for
// good. It returns nil on stop.
func (rm *receiverManager) run() error {
	for {
		recv := rm.getRecv()
		payload, err := recv.Receive()
		if err == nil {
			if rm.onPayload != nil {
				rm.onPayload(recv.Source(), payload)
			}
			continue
		}

		if rm.stopping() {
			return nil
		}
		if errors.Is(err, ErrReplayFinished) {
			return err
		}
		if rm.reconnect == nil {
			if errors.Is(err, ErrConnectionClosed) {
				return err
			}
			Log.WithError(err).Warn("receive failed")
			time.Sleep(10 * time.Millisecond)
			continue
		}

		Log.WithError(err).Warn("connection lost")
		if rm.onLost != nil {
			rm.onLost(err)
		}
		if !rm.reconnectWithBackoff() {
			return nil // Shutdown requested during reconnect
		}
	}
}

// start runs the manager in its own goroutine. onExit, if set, receives
// the result of run before wait returns.
func (rm *receiverManager) start(onExit func(error)) {
	rm.exited = make(chan struct{})
	go func() {
		defer close(rm.exited)
		err := rm.run()
		if onExit != nil {
			onExit(err)
		}
	}()
}

// wait blocks until the goroutine launched by start has returned
func (rm *receiverManager) wait() {
	if rm.exited != nil {
		<-rm.exited
	}
}

// reconnectWithBackoff attempts to reconnect with exponential backoff.
// Returns false if shutdown was requested during reconnection.
func (rm *receiverManager) reconnectWithBackoff() bool {
	if recv := rm.getRecv(); recv != nil {
		recv.Close()
	}

	backoff := initialBackoff
	for {
		select {
		case <-rm.done:
			return false
		case <-time.After(backoff):
		}

		recv, err := rm.reconnect()
		if err == nil {
			rm.setRecv(recv)
			Log.WithField("connection", recv.String()).Info("reconnected")
			if rm.onReconnect != nil {
				rm.onReconnect(recv.String())
			}
			return true
		}

		Log.WithFields(logrus.Fields{
			"error":   err,
			"backoff": backoff,
		}).Debug("reconnect failed")

		backoff = nextBackoff(backoff)
	}
}

func nextBackoff(backoff time.Duration) time.Duration {
	backoff *= 2
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}

// stop ends run and closes the current receiver
func (rm *receiverManager) stop() {
	rm.stopOnce.Do(func() {
		close(rm.done)
		if recv := rm.getRecv(); recv != nil {
			recv.Close()
		}
	})
}
