package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

var (
	errShortWAV  = errors.New("wav data too short")
	errNotWAV    = errors.New("missing RIFF/WAVE header")
	errNoPCMData = errors.New("wav has no data chunk")
)

// Player plays WAV audio through the system device via oto. A single oto
// context is shared by all playback; only one clip plays at a time.
type Player struct {
	ctx *oto.Context
	log *zap.SugaredLogger

	mu     sync.Mutex
	active *oto.Player // nil when idle
}

// NewPlayer initializes the system audio context. Returns an error when
// no audio device is available.
func NewPlayer(log *zap.SugaredLogger) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	log.Debugw("audio player initialized", "rate", SampleRate, "channels", ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play plays a WAV clip synchronously. Blocks until playback finishes or
// Stop is called.
func (p *Player) Play(wav []byte) error {
	pcm, err := pcmSamples(wav)
	if err != nil {
		return err
	}

	clip := p.ctx.NewPlayer(bytes.NewReader(pcm))
	p.setActive(clip)
	clip.Play()

	// oto exposes no completion signal, so poll.
	for clip.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.setActive(nil)
	return clip.Close()
}

// Stop interrupts the clip currently playing, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debugw("audio playback interrupted")
	}
}

func (p *Player) setActive(clip *oto.Player) {
	p.mu.Lock()
	p.active = clip
	p.mu.Unlock()
}

// pcmSamples locates the data chunk inside a RIFF container and returns
// the raw samples. Azure's riff-24khz-16bit-mono-pcm output sometimes
// carries extra chunks before data, so the walk cannot assume a 44-byte
// header.
func pcmSamples(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errShortWAV
	}
	if !bytes.Equal(wav[0:4], []byte("RIFF")) || !bytes.Equal(wav[8:12], []byte("WAVE")) {
		return nil, errNotWAV
	}

	for pos := 12; pos+8 <= len(wav); {
		id := wav[pos : pos+4]
		size := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		body := pos + 8

		if bytes.Equal(id, []byte("data")) {
			end := body + size
			if end > len(wav) {
				end = len(wav)
			}
			return wav[body:end], nil
		}

		pos = body + size
		if size%2 != 0 { // chunks are word-aligned
			pos++
		}
	}
	return nil, errNoPCMData
}
