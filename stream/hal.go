// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stream

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// destroyTimeout bounds how long Destroy waits for in-flight submissions.
const destroyTimeout = time.Second

// pollInterval is the sleep between completion polls of a blocking wait.
const pollInterval = 100 * time.Microsecond

// Syncpoint is a monotonically increasing completion counter for one engine
// class. Every submission on the class takes the next value; completion is
// tracked through the queue's submission index.
//
// Syncpoint is safe for concurrent use.
type Syncpoint struct {
	class Class
	queue hal.Queue

	// submitMu orders submissions so values reach the queue in order.
	submitMu sync.Mutex
	value    uint64

	// lifeMu guards the queue against destruction while a poll is running.
	lifeMu    sync.RWMutex
	destroyed bool
}

// Class returns the engine class the syncpoint tracks.
func (sp *Syncpoint) Class() Class { return sp.class }

// Value returns the value of the most recent submission.
func (sp *Syncpoint) Value() uint64 {
	sp.submitMu.Lock()
	defer sp.submitMu.Unlock()
	return sp.value
}

func (sp *Syncpoint) submit(cmd hal.CommandBuffer) (Threshold, error) {
	sp.submitMu.Lock()
	defer sp.submitMu.Unlock()

	sp.lifeMu.RLock()
	defer sp.lifeMu.RUnlock()
	if sp.destroyed {
		return Threshold{}, ErrDestroyed
	}

	index, err := sp.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		return Threshold{}, fmt.Errorf("%w: submit %s: %w", ErrIO, sp.class, err)
	}
	sp.value++
	return Threshold{sp: sp, value: sp.value, index: index}, nil
}

func (sp *Syncpoint) destroy() {
	sp.lifeMu.Lock()
	defer sp.lifeMu.Unlock()
	sp.destroyed = true
}

// Threshold is a syncpoint value that marks one submission.
type Threshold struct {
	sp    *Syncpoint
	value uint64
	index uint64
}

// Value returns the syncpoint value the threshold waits for.
func (t Threshold) Value() uint64 { return t.value }

// Index returns the queue submission index of the submission.
func (t Threshold) Index() uint64 { return t.index }

// Wait blocks until the queue has completed the submission or the timeout
// elapses. A zero timeout polls once. It fails with ErrDestroyed once the
// owning factory is destroyed.
func (t Threshold) Wait(timeout time.Duration) (bool, error) {
	if t.sp == nil {
		return true, nil
	}
	deadline := time.Now().Add(timeout)
	for {
		done, err := t.poll()
		if err != nil || done {
			return done, err
		}
		left := time.Until(deadline)
		if left <= 0 {
			return false, nil
		}
		time.Sleep(min(pollInterval, left))
	}
}

func (t Threshold) poll() (bool, error) {
	t.sp.lifeMu.RLock()
	defer t.sp.lifeMu.RUnlock()
	if t.sp.destroyed {
		return false, ErrDestroyed
	}
	return t.sp.queue.PollCompleted() >= t.index, nil
}

// HALFactory creates streams that submit through a hal.Queue.
// It owns one Syncpoint per engine class; streams of the same class,
// including streams of different contexts, share it.
//
// HALFactory is safe for concurrent use. Streams it creates are not.
type HALFactory struct {
	device hal.Device
	queue  hal.Queue

	mu        sync.Mutex
	syncpts   map[Class]*Syncpoint
	destroyed bool
}

// NewHALFactory returns a factory bound to device and queue.
func NewHALFactory(device hal.Device, queue hal.Queue) *HALFactory {
	return &HALFactory{
		device:  device,
		queue:   queue,
		syncpts: make(map[Class]*Syncpoint),
	}
}

// Syncpoint returns the syncpoint of class, creating it on first use.
func (f *HALFactory) Syncpoint(class Class) (*Syncpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncpointLocked(class)
}

func (f *HALFactory) syncpointLocked(class Class) (*Syncpoint, error) {
	if f.destroyed {
		return nil, ErrDestroyed
	}
	if sp, ok := f.syncpts[class]; ok {
		return sp, nil
	}
	sp := &Syncpoint{class: class, queue: f.queue}
	f.syncpts[class] = sp
	return sp, nil
}

// CreateStream creates a stream of capacity bytes for class.
// The device-side pushbuffer is allocated once here and reused by every
// flush.
func (f *HALFactory) CreateStream(class Class, capacity int) (Stream, error) {
	if capacity <= 0 || capacity%WordSize != 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalid, capacity)
	}

	f.mu.Lock()
	sp, err := f.syncpointLocked(class)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	label := class.String() + "_pushbuf"
	buf, err := f.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(capacity),
		Usage: gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrNoMemory, label, err)
	}

	return &halStream{
		device:   f.device,
		queue:    f.queue,
		sp:       sp,
		label:    label,
		capacity: capacity,
		words:    make([]uint32, 0, capacity/WordSize),
		scratch:  make([]byte, 0, capacity),
		pushbuf:  buf,
		inflight: queue.New(),
	}, nil
}

// Destroy destroys every syncpoint. Thresholds handed out earlier report
// ErrDestroyed afterwards. Streams must be destroyed first.
func (f *HALFactory) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destroyed {
		return
	}
	f.destroyed = true
	for class, sp := range f.syncpts {
		sp.destroy()
		delete(f.syncpts, class)
	}
}

// submission is a command buffer awaiting retirement.
type submission struct {
	cmd       hal.CommandBuffer
	threshold Threshold
}

// halStream implements Stream on a hal.Queue.
type halStream struct {
	device hal.Device
	queue  hal.Queue
	sp     *Syncpoint
	label  string

	capacity int
	words    []uint32
	scratch  []byte
	pushbuf  hal.Buffer

	// inflight holds submissions in syncpoint order.
	inflight *queue.Queue
	last     *Threshold
	flushes  uint64

	destroyed bool
}

func (s *halStream) Push(words ...uint32) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if (len(s.words)+len(words))*WordSize > s.capacity {
		return fmt.Errorf("%w: %s: %d bytes pending, %d pushed, capacity %d",
			ErrFull, s.label, len(s.words)*WordSize, len(words)*WordSize, s.capacity)
	}
	s.words = append(s.words, words...)
	return nil
}

func (s *halStream) Len() int { return len(s.words) * WordSize }

func (s *halStream) Cap() int { return s.capacity }

// Flush uploads the pending words into the pushbuffer and submits one
// command buffer taking the next syncpoint value. The write position
// is reset whether or not the submission succeeds.
func (s *halStream) Flush() error {
	if s.destroyed {
		return ErrDestroyed
	}
	if len(s.words) == 0 {
		return nil
	}
	defer func() { s.words = s.words[:0] }()

	s.retire(0)

	s.scratch = s.scratch[:0]
	for _, w := range s.words {
		s.scratch = binary.LittleEndian.AppendUint32(s.scratch, w)
	}
	if err := s.queue.WriteBuffer(s.pushbuf, 0, s.scratch); err != nil {
		return fmt.Errorf("%w: write pushbuffer: %w", ErrIO, err)
	}

	s.flushes++
	label := fmt.Sprintf("%s_%d", s.label, s.flushes)
	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return fmt.Errorf("%w: create command encoder: %w", ErrNoMemory, err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("%w: begin encoding: %w", ErrIO, err)
	}
	cmd, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("%w: end encoding: %w", ErrIO, err)
	}

	threshold, err := s.sp.submit(cmd)
	if err != nil {
		s.device.FreeCommandBuffer(cmd)
		return err
	}
	s.inflight.Add(submission{cmd: cmd, threshold: threshold})
	s.last = &threshold
	return nil
}

// LastSubmit returns the threshold of the most recent submission.
func (s *halStream) LastSubmit() Waiter {
	if s.last == nil {
		return nil
	}
	return *s.last
}

// retire frees command buffers of completed submissions, oldest first.
func (s *halStream) retire(timeout time.Duration) {
	for s.inflight.Length() > 0 {
		sub := s.inflight.Peek().(submission)
		done, err := sub.threshold.Wait(timeout)
		if err != nil || !done {
			return
		}
		s.device.FreeCommandBuffer(sub.cmd)
		s.inflight.Remove()
	}
}

func (s *halStream) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.words = nil

	s.retire(destroyTimeout)
	// Whatever is left did not complete in time; the device is idle or
	// lost by now.
	for s.inflight.Length() > 0 {
		sub := s.inflight.Remove().(submission)
		s.device.FreeCommandBuffer(sub.cmd)
	}
	s.device.DestroyBuffer(s.pushbuf)
	s.pushbuf = nil
}
