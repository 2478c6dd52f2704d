package utils

import (
	"math/rand"
	"time"
)

// Backoff retries a function with exponential delays plus a little jitter.
// The server uses it to ride out a store held by an in-flight rebuild.
type Backoff struct {
	base       time.Duration
	maxRetries int
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	return Backoff{base: base, maxRetries: maxRetries}
}

func (b Backoff) Do(fn func(i int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		if i == b.maxRetries {
			break
		}
		t := time.Duration(1<<i) * b.base
		if jitter := int64(b.base / 2); jitter > 0 {
			t += time.Duration(rand.Int63n(jitter))
		}
		time.Sleep(t)
	}
	return err
}
