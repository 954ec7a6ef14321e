// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tegra

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gogpu/tegra/internal/halnoop"
	"github.com/gogpu/tegra/stream"
	"github.com/gogpu/wgpu/hal"
)

// opLog records the order of observable operations across mocks.
type opLog struct {
	ops []string
}

func (l *opLog) add(format string, args ...any) {
	l.ops = append(l.ops, fmt.Sprintf(format, args...))
}

// mockWaiter is a submission with a fixed completion state.
type mockWaiter struct {
	done bool
	err  error
}

func (w *mockWaiter) Wait(time.Duration) (bool, error) { return w.done, w.err }

// mockStream records flushes and destruction.
type mockStream struct {
	class     stream.Class
	log       *opLog
	capacity  int
	pending   int
	flushed   []int // Bytes submitted by each flush
	flushErr  error
	destroyed bool
	last      *mockWaiter
}

func (s *mockStream) Push(words ...uint32) error {
	if s.pending+len(words)*stream.WordSize > s.capacity {
		return stream.ErrFull
	}
	s.pending += len(words) * stream.WordSize
	return nil
}

func (s *mockStream) Len() int { return s.pending }
func (s *mockStream) Cap() int { return s.capacity }

func (s *mockStream) Flush() error {
	s.log.add("flush %s", s.class)
	n := s.pending
	s.pending = 0
	s.flushed = append(s.flushed, n)
	if s.flushErr != nil {
		return s.flushErr
	}
	if n > 0 {
		s.last = &mockWaiter{done: true}
	}
	return nil
}

func (s *mockStream) LastSubmit() stream.Waiter {
	if s.last == nil {
		return nil
	}
	return s.last
}

func (s *mockStream) Destroy() {
	s.log.add("destroy %s", s.class)
	s.destroyed = true
}

// mockStreams is a stream factory with failure injection per class.
type mockStreams struct {
	log        *opLog
	createErr  map[stream.Class]error
	flushErr   map[stream.Class]error
	created    []*mockStream
	capacities []int
}

func newMockStreams(log *opLog) *mockStreams {
	return &mockStreams{
		log:       log,
		createErr: make(map[stream.Class]error),
		flushErr:  make(map[stream.Class]error),
	}
}

func (f *mockStreams) CreateStream(class stream.Class, capacity int) (stream.Stream, error) {
	f.capacities = append(f.capacities, capacity)
	if err := f.createErr[class]; err != nil {
		return nil, err
	}
	s := &mockStream{class: class, log: f.log, capacity: capacity, flushErr: f.flushErr[class]}
	f.created = append(f.created, s)
	return s, nil
}

func (f *mockStreams) stream(class stream.Class) *mockStream {
	for i := len(f.created) - 1; i >= 0; i-- {
		if f.created[i].class == class {
			return f.created[i]
		}
	}
	return nil
}

// live returns the number of created streams not yet destroyed.
func (f *mockStreams) live() int {
	n := 0
	for _, s := range f.created {
		if !s.destroyed {
			n++
		}
	}
	return n
}

// mockUploader records destruction and checks it happens after the
// transfer pool child is gone.
type mockUploader struct {
	log            *opLog
	screen         *Screen
	destroyed      int
	childrenAtDrop int
}

func (u *mockUploader) Upload(data []byte, _ uint64) (hal.Buffer, uint64, error) {
	return nil, 0, nil
}

func (u *mockUploader) Destroy() {
	u.log.add("destroy uploader")
	u.destroyed++
	u.childrenAtDrop = u.screen.TransferPool().Stats().Children
}

// mockUploaders is an uploader factory with failure injection.
type mockUploaders struct {
	log     *opLog
	err     error
	created []*mockUploader
}

func (f *mockUploaders) factory(ctx *Context) (Uploader, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := &mockUploader{log: f.log, screen: ctx.Screen()}
	f.created = append(f.created, u)
	return u, nil
}

// countingAllocator counts live records and fails the failAt-th Alloc
// (1-based) or every Alloc of a kind in failKinds.
type countingAllocator struct {
	failAt    int
	failKinds map[ObjectKind]bool
	calls     int
	live      map[ObjectKind]int
}

func newCountingAllocator() *countingAllocator {
	return &countingAllocator{
		failKinds: make(map[ObjectKind]bool),
		live:      make(map[ObjectKind]int),
	}
}

var errInjected = errors.New("injected allocation failure")

func (a *countingAllocator) Alloc(kind ObjectKind) error {
	a.calls++
	if a.calls == a.failAt || a.failKinds[kind] {
		return errInjected
	}
	a.live[kind]++
	return nil
}

func (a *countingAllocator) Free(kind ObjectKind) {
	a.live[kind]--
}

func (a *countingAllocator) total() int {
	n := 0
	for _, v := range a.live {
		n += v
	}
	return n
}

// createNoopDevice opens a noop device for the duration of the test.
func createNoopDevice(t *testing.T) *halnoop.Device {
	t.Helper()
	dev, err := halnoop.Open()
	if err != nil {
		t.Fatalf("halnoop.Open failed: %v", err)
	}
	t.Cleanup(dev.Close)
	return dev
}

// testRig is a screen wired to mocks.
type testRig struct {
	screen    *Screen
	log       *opLog
	streams   *mockStreams
	uploaders *mockUploaders
	alloc     *countingAllocator
}

func newTestRig(t *testing.T, opts ...ScreenOption) *testRig {
	t.Helper()
	dev := createNoopDevice(t)
	log := &opLog{}
	r := &testRig{
		log:       log,
		streams:   newMockStreams(log),
		uploaders: &mockUploaders{log: log},
		alloc:     newCountingAllocator(),
	}
	base := []ScreenOption{
		WithStreamFactory(r.streams),
		WithUploaderFactory(r.uploaders.factory),
		WithAllocator(r.alloc),
	}
	s, err := NewScreen(dev.Device, dev.Queue, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewScreen failed: %v", err)
	}
	r.screen = s
	return r
}
