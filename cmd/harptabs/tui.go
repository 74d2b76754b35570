package main

import (
	"context"
	"errors"
	"os"

	"github.com/0xlemi/harptabs/internal/audio"
	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/pitch"
	"github.com/0xlemi/harptabs/internal/samples"
	"github.com/0xlemi/harptabs/internal/tone"
	"github.com/0xlemi/harptabs/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *options) error {
	e, err := opts.openLogged()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if _, err := samples.SeedIfEmpty(ctx, e.store, e.log); err != nil {
		return err
	}

	a := e.cfg.Audio
	synth := tone.NewSynth(a.SampleRate, uint64(os.Getpid()))
	player := tone.NewPlayer(synth, audio.NewPortAudioSink(a.SampleRate, tone.DefaultBlockSize), tone.DefaultBlockSize, e.log)
	source := audio.NewPortAudioSource(a.SampleRate, max(a.BufferBytes, pitch.DefaultBufferBytes)/2)
	listener := pitch.NewListener(source, a.NewDetector(), a.BufferBytes, e.log)

	e.log.Info("starting terminal ui")
	err = ui.Run(ctx, ui.Deps{
		Store:             e.store,
		Settings:          e.settings,
		Player:            player,
		Listener:          listener,
		Frequency:         notation.HarmonicaMap,
		Practice:          e.cfg.Practice,
		Log:               e.log,
		Bell:              os.Stdout,
		HasDarkBackground: lipgloss.HasDarkBackground(),
	})
	if errors.Is(err, tea.ErrProgramKilled) && errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return err
}
