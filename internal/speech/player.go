package speech

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// PCM format produced by engines that hand raw audio to a Player.
const (
	Channels       = 1
	BytesPerSample = 2 // signed 16-bit little endian
)

// pollInterval is how often Play checks for completion or cancellation.
const pollInterval = 20 * time.Millisecond

// Player plays raw PCM through the system audio device. oto allows a single
// context per process, so the context is created on first use with that
// call's sample rate and later calls must use the same rate.
type Player struct {
	once       sync.Once
	ctx        *oto.Context
	sampleRate int
	err        error
}

// NewPlayer returns a player whose audio context is created lazily.
func NewPlayer() *Player {
	return &Player{}
}

func (p *Player) init(sampleRate int) error {
	p.once.Do(func() {
		opts := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		switch runtime.GOOS {
		case "darwin":
			opts.BufferSize = 100 * time.Millisecond
		default:
			opts.BufferSize = 50 * time.Millisecond
		}

		ctx, ready, err := oto.NewContext(opts)
		if err != nil {
			p.err = fmt.Errorf("failed to create audio context: %w", err)
			return
		}
		<-ready
		p.ctx = ctx
		p.sampleRate = sampleRate
	})
	if p.err != nil {
		return p.err
	}
	if sampleRate != p.sampleRate {
		return fmt.Errorf("sample rate %d Hz does not match audio device rate %d Hz", sampleRate, p.sampleRate)
	}
	return nil
}

// Play plays pcm at sampleRate and blocks until playback finishes or ctx is
// done, in which case playback is paused and ctx.Err() returned.
func (p *Player) Play(ctx context.Context, pcm []byte, sampleRate int) error {
	if len(pcm) == 0 {
		return nil
	}
	if len(pcm)%BytesPerSample != 0 {
		return fmt.Errorf("invalid PCM length %d", len(pcm))
	}
	if err := p.init(sampleRate); err != nil {
		return err
	}

	pl := p.ctx.NewPlayer(bytes.NewReader(pcm))
	defer func() { _ = pl.Close() }()
	pl.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for pl.IsPlaying() {
		select {
		case <-ctx.Done():
			pl.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return pl.Err()
}
