package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/reliability"
)

// ErrNoPlayer is returned when no audio output command is installed.
var ErrNoPlayer = errors.New("no audio player found")

// Player plays a clip to completion. Cancelling ctx stops output immediately.
type Player interface {
	Play(ctx context.Context, clip Clip) error
}

// Command is an external program that plays an audio file given as its last argument
type Command struct {
	Name string
	Args []string
}

// DefaultCommands are tried in order when resolving a player.
var DefaultCommands = []Command{
	{Name: "afplay"},
	{Name: "paplay"},
	{Name: "aplay", Args: []string{"-q"}},
	{Name: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
}

// CommandPlayer plays clips through the first available command line player.
// The command is resolved once and reused for every clip.
type CommandPlayer struct {
	candidates []Command
	lookPath   func(string) (string, error)

	once     sync.Once
	resolved *Command
}

// NewCommandPlayer creates a player trying candidates in order (DefaultCommands when empty).
func NewCommandPlayer(candidates ...Command) *CommandPlayer {
	if len(candidates) == 0 {
		candidates = DefaultCommands
	}
	return &CommandPlayer{candidates: candidates, lookPath: exec.LookPath}
}

func (p *CommandPlayer) resolve() *Command {
	p.once.Do(func() {
		for i := range p.candidates {
			c := p.candidates[i]
			path, err := p.lookPath(c.Name)
			if err != nil {
				continue
			}
			c.Name = path
			p.resolved = &c
			log.Debug().Str("player", path).Msg("Resolved audio player")
			return
		}
		log.Debug().Msg("No audio player available")
	})
	return p.resolved
}

// Available reports whether an output command was found.
func (p *CommandPlayer) Available() bool {
	return p.resolve() != nil
}

// Play writes clip to a temporary file and blocks until the player exits.
func (p *CommandPlayer) Play(ctx context.Context, clip Clip) error {
	cmd := p.resolve()
	if cmd == nil {
		return reliability.New(reliability.KindAudioDevice, "audio.play", ErrNoPlayer)
	}
	if len(clip.Data) == 0 {
		return nil
	}

	clip, err := clip.Playable()
	if err != nil {
		return fmt.Errorf("failed to prepare clip: %w", err)
	}

	tmp, err := os.CreateTemp("", "angertranslator_*"+clip.Format.Extension())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(clip.Data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to save audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save audio: %w", err)
	}

	args := append(append([]string{}, cmd.Args...), tmp.Name())
	run := exec.CommandContext(ctx, cmd.Name, args...)
	if err := run.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return reliability.New(reliability.KindAudioDevice, "audio.play", fmt.Errorf("failed to play audio: %w", err))
	}
	return nil
}
