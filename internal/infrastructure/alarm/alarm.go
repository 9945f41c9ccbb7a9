// Package alarm plays the success sound on a loop until the process is told
// to stop.
package alarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/spf13/afero"
)

// seams for tests
var (
	speakerInit  = speaker.Init
	speakerPlay  = speaker.Play
	speakerClear = speaker.Clear
)

// Repeat calls play back to back until ctx is cancelled or play fails.
func Repeat(ctx context.Context, play func(ctx context.Context) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := play(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// Player loops an mp3 file on the default audio device.
type Player struct {
	Fs   afero.Fs
	Path string
}

func New(path string) *Player {
	return &Player{Fs: afero.NewOsFs(), Path: path}
}

// Loop blocks until ctx is cancelled. It returns early only when the file
// cannot be played at all.
func (p *Player) Loop(ctx context.Context) error {
	if p.Path == "" {
		return errors.New("alarm file not set")
	}
	fs := p.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(p.Path)
	if err != nil {
		return fmt.Errorf("open alarm: %w", err)
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("decode %s: %w", p.Path, err)
	}
	defer streamer.Close()

	if err := speakerInit(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	defer speakerClear()

	return Repeat(ctx, func(ctx context.Context) error {
		return playOnce(ctx, streamer)
	})
}

func playOnce(ctx context.Context, s beep.StreamSeeker) error {
	if err := s.Seek(0); err != nil {
		return fmt.Errorf("rewind alarm: %w", err)
	}
	done := make(chan struct{})
	speakerPlay(beep.Seq(s, beep.Callback(func() { close(done) })))
	select {
	case <-ctx.Done():
		speakerClear()
		return ctx.Err()
	case <-done:
		return nil
	}
}
