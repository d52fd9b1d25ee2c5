package irc

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tonkon/tonkonbot/internal/config"
	"github.com/tonkon/tonkonbot/internal/telemetry"
)

// ErrReconnectExhausted is returned when the configured reconnect attempt
// limit is reached.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// supervised is what the supervisor needs from a client.
type supervised interface {
	Connect() error
	Disconnected() <-chan struct{}
	Err() error
	Quitting() bool
}

// Supervisor owns the retry loop around transport establishment. A failure
// on the very first connect is fatal (almost always misconfiguration), while
// a disconnect after at least one successful session triggers reconnection
// under a jittered exponential backoff policy.
type Supervisor struct {
	client      supervised
	policy      backoff.BackOff
	maxAttempts int
}

// NewSupervisor builds a supervisor for client from the reconnect config.
func NewSupervisor(cfg *config.Config, client *Client) *Supervisor {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Duration(cfg.Reconnect.InitialSeconds) * time.Second
	bo.MaxInterval = time.Duration(cfg.Reconnect.MaxSeconds) * time.Second
	bo.RandomizationFactor = 0.5
	// Attempts are the only cap; never give up on elapsed time alone.
	bo.MaxElapsedTime = 0
	bo.Reset()

	return newSupervisor(client, bo, cfg.Reconnect.MaxAttempts)
}

func newSupervisor(client supervised, policy backoff.BackOff, maxAttempts int) *Supervisor {
	return &Supervisor{client: client, policy: policy, maxAttempts: maxAttempts}
}

// Run drives connect/reconnect until a clean shutdown (nil), a fatal session
// error, or policy exhaustion. It blocks for the lifetime of the bot.
func (s *Supervisor) Run() error {
	connected := false
	attempts := 0

	for {
		if s.client.Quitting() {
			return nil
		}

		if err := s.client.Connect(); err != nil {
			if !connected {
				return fmt.Errorf("initial connection failed: %w", err)
			}
		} else {
			connected = true
			attempts = 0
			s.policy.Reset()

			<-s.client.Disconnected()

			if err := s.client.Err(); err != nil {
				return err
			}
			if s.client.Quitting() {
				return nil
			}
		}

		attempts++
		if s.maxAttempts > 0 && attempts > s.maxAttempts {
			return ErrReconnectExhausted
		}
		wait := s.policy.NextBackOff()
		if wait == backoff.Stop {
			return ErrReconnectExhausted
		}

		telemetry.IncReconnect()
		log.Printf("reconnecting in %s (attempt %d)", wait.Round(time.Millisecond), attempts)
		time.Sleep(wait)
	}
}
