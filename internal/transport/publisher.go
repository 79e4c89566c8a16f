// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"sync"
	"time"

	applog "spectrum/internal/log"
)

// Publisher snapshots the bar state on a fixed interval and fans the
// resulting Frame out to its transports. Each enabled transport gets its
// own publisher so cadences stay independent.
type Publisher struct {
	provider   BarProvider
	transports []Transport
	interval   time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	seq uint64
}

// NewPublisher creates a publisher sending frames every interval. An
// interval <= 0 defaults to 33ms.
func NewPublisher(interval time.Duration, provider BarProvider, transports ...Transport) (*Publisher, error) {
	if provider == nil {
		return nil, fmt.Errorf("publisher: bar provider cannot be nil")
	}
	if len(transports) == 0 {
		return nil, fmt.Errorf("publisher: at least one transport required")
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("Publisher: invalid interval, defaulting to %s", interval)
	}
	return &Publisher{
		provider:   provider,
		transports: transports,
		interval:   interval,
	}, nil
}

// Start launches the publisher goroutine. Calling Start on a running
// publisher is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("Publisher: Start called but already running")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("Publisher: started (interval %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine and waits for it to exit. Safe to
// call multiple times.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Close stops the publisher and closes every transport.
func (p *Publisher) Close() error {
	err := p.Stop()
	for _, t := range p.transports {
		if cerr := t.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// publish builds one frame and hands it to every transport. Frames own
// their slices; transports may retain them past the call.
func (p *Publisher) publish() {
	n := p.provider.Bars()
	frame := &Frame{
		Heights: make([]float64, n),
		Peaks:   make([]float64, n),
	}
	frame.Idle = p.provider.Snapshot(frame.Heights, frame.Peaks)

	p.seq++
	frame.Seq = p.seq
	frame.Timestamp = time.Now().UnixNano()

	for _, t := range p.transports {
		if err := t.Send(frame); err != nil {
			applog.Errorf("Publisher: transport send failed: %v", err)
		}
	}
}
