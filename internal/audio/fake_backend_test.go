package audio

import (
	"errors"
	"math"
	"sync"
	"time"
)

// fakeBackend emulates a driver that calls back from its own goroutine.
type fakeBackend struct {
	devices    []Device
	devicesErr error
	openErr    error
	startErr   error

	// rate and channels are what the fake device negotiates.
	rate     uint32
	channels int
	// period is the number of frames per callback.
	period int
	// total caps the frames produced; zero means unlimited.
	total int
	// toneHz and amplitude shape the generated sine.
	toneHz    float64
	amplitude float64

	mu     sync.Mutex
	opened *fakeStream
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		devices:   []Device{{Index: 0, Name: "Fake Mic", IsDefault: true}},
		rate:      16000,
		channels:  1,
		period:    160,
		toneHz:    1000,
		amplitude: 0.05,
	}
}

func (b *fakeBackend) Devices() ([]Device, error) {
	if b.devicesErr != nil {
		return nil, b.devicesErr
	}
	return b.devices, nil
}

func (b *fakeBackend) Open(dev *Device, cfg StreamConfig, onFrames FrameHandler) (Stream, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	s := &fakeStream{backend: b, device: dev, onFrames: onFrames, done: make(chan struct{})}
	b.mu.Lock()
	b.opened = s
	b.mu.Unlock()
	return s, nil
}

func (b *fakeBackend) stream() *fakeStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

type fakeStream struct {
	backend  *fakeBackend
	device   *Device
	onFrames FrameHandler

	stopOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
	stopped  bool
}

func (s *fakeStream) Start() error {
	if s.backend.startErr != nil {
		return s.backend.startErr
	}
	s.quit = make(chan struct{})
	go s.run()
	return nil
}

func (s *fakeStream) run() {
	defer close(s.done)
	b := s.backend
	buf := make([]int16, b.period*b.channels)
	periodDuration := time.Duration(float64(b.period) / float64(b.rate) * float64(time.Second) / 20)
	ticker := time.NewTicker(max(periodDuration, time.Millisecond))
	defer ticker.Stop()

	produced := 0
	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
		}
		if b.total > 0 && produced >= b.total {
			continue
		}
		frames := b.period
		if b.total > 0 {
			frames = min(frames, b.total-produced)
		}
		for i := range frames {
			t := float64(produced+i) / float64(b.rate)
			v := int16(b.amplitude * math.MaxInt16 * math.Sin(2*math.Pi*b.toneHz*t))
			for ch := range b.channels {
				buf[i*b.channels+ch] = v
			}
		}
		s.onFrames(buf[:frames*b.channels], b.channels)
		produced += frames
	}
}

func (s *fakeStream) Stop() error {
	s.stopOnce.Do(func() {
		s.stopped = true
		if s.quit == nil {
			close(s.done)
			return
		}
		close(s.quit)
	})
	<-s.done
	return nil
}

func (s *fakeStream) SampleRate() uint32 { return s.backend.rate }

func (s *fakeStream) Channels() uint32 { return uint32(s.backend.channels) }

var errFakeDriver = errors.New("fake driver failure")
