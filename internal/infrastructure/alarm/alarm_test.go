package alarm

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestRepeatStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	plays := 0
	err := Repeat(ctx, func(context.Context) error {
		plays++
		if plays == 3 {
			cancel()
		}
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 3, plays)
}

func TestRepeatReturnsPlayError(t *testing.T) {
	boom := errors.New("device busy")
	err := Repeat(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestRepeatPrefersCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := Repeat(ctx, func(context.Context) error {
		cancel()
		return errors.New("interrupted")
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoopMissingFile(t *testing.T) {
	p := &Player{Fs: afero.NewMemMapFs(), Path: "alarm.mp3"}
	err := p.Loop(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoopRejectsNonMP3(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "alarm.mp3", []byte("definitely not audio"), 0o644))

	p := &Player{Fs: fs, Path: "alarm.mp3"}
	require.ErrorContains(t, p.Loop(context.Background()), "decode alarm.mp3")
}

func TestLoopRequiresPath(t *testing.T) {
	require.Error(t, (&Player{}).Loop(context.Background()))
}

// silence is a seekable stream of n zero samples.
type silence struct {
	n, pos int
}

func (s *silence) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= s.n {
		return 0, false
	}
	k := min(len(samples), s.n-s.pos)
	for i := range k {
		samples[i] = [2]float64{}
	}
	s.pos += k
	return k, true
}

func (s *silence) Err() error    { return nil }
func (s *silence) Len() int      { return s.n }
func (s *silence) Position() int { return s.pos }
func (s *silence) Seek(p int) error {
	s.pos = p
	return nil
}

func stubSpeaker(t *testing.T) *int {
	t.Helper()
	cleared := 0
	origPlay, origClear := speakerPlay, speakerClear
	speakerPlay = func(s ...beep.Streamer) {
		// drain synchronously, like a speaker that plays instantly
		buf := make([][2]float64, 64)
		for _, st := range s {
			for {
				if _, ok := st.Stream(buf); !ok {
					break
				}
			}
		}
	}
	speakerClear = func() { cleared++ }
	t.Cleanup(func() { speakerPlay, speakerClear = origPlay, origClear })
	return &cleared
}

func TestPlayOnceRewinds(t *testing.T) {
	stubSpeaker(t)
	s := &silence{n: 100, pos: 100}
	require.NoError(t, playOnce(context.Background(), s))
	require.Equal(t, 100, s.pos)
}

func TestPlayOnceClearsOnCancel(t *testing.T) {
	cleared := stubSpeaker(t)
	speakerPlay = func(...beep.Streamer) {} // never finishes

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := playOnce(ctx, &silence{n: 10})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, *cleared)
}
