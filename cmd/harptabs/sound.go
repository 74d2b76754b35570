package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/0xlemi/harptabs/internal/audio"
	"github.com/0xlemi/harptabs/internal/detail"
	"github.com/0xlemi/harptabs/internal/export"
	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/pitch"
	"github.com/0xlemi/harptabs/internal/tone"
	"github.com/0xlemi/harptabs/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	errNoNotation         = errors.New("tab has free-text content and cannot be played")
	errMicrophoneDisabled = errors.New("microphone unavailable")
)

// loadNotation reads a tab and its parsed notation
func loadNotation(ctx context.Context, e *env, id int64) (model.Tab, notation.Notation, error) {
	d := detail.New(e.store, notation.HarmonicaMap)
	if err := d.Load(ctx, id); err != nil {
		return model.Tab{}, notation.Notation{}, err
	}
	n := d.Notation()
	if n == nil {
		return model.Tab{}, notation.Notation{}, fmt.Errorf("%w: %q", errNoNotation, d.Tab().Title)
	}
	return d.Tab(), *n, nil
}

// createOutput opens path for writing, "-" meaning w
func createOutput(path string, w io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

func newListenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Show the note heard by the microphone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.openLogged()
			if err != nil {
				return err
			}
			defer e.Close()

			mode, err := e.settings.ThemeMode(cmd.Context())
			if err != nil {
				return err
			}
			theme := ui.NewTheme(mode, lipgloss.HasDarkBackground())

			a := e.cfg.Audio
			source := audio.NewPortAudioSource(a.SampleRate, max(a.BufferBytes, pitch.DefaultBufferBytes)/2)
			listener := pitch.NewListener(source, a.NewDetector(), a.BufferBytes, e.log)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			p := tea.NewProgram(ui.NewTuner(theme), tea.WithAltScreen(), tea.WithContext(ctx))

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				listener.Start(gctx, func(r pitch.Reading) {
					p.Send(ui.PitchMsg(r))
				})
				if !listener.Running() {
					p.Quit()
					return errMicrophoneDisabled
				}
				<-gctx.Done()
				listener.Stop()
				return nil
			})
			g.Go(func() error {
				defer cancel()
				_, err := p.Run()
				if errors.Is(err, tea.ErrProgramKilled) {
					return nil
				}
				return err
			})
			return g.Wait()
		},
	}
}

func newPlayCmd(opts *options) *cobra.Command {
	var tempo float64
	cmd := &cobra.Command{
		Use:   "play <id>",
		Short: "Play a tab through the speakers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if tempo <= 0 {
				return export.ErrInvalidTempo
			}
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				tab, n, err := loadNotation(ctx, e, id)
				if err != nil {
					return err
				}
				sr := e.cfg.Audio.SampleRate
				note, gap := tone.BeatTiming(tempo)
				clip := tone.RenderNotation(n, notation.HarmonicaMap, sr, note, gap)

				fmt.Fprintf(cmd.OutOrStdout(), "Playing %s (%s)\n", tab.Title, clip.Duration().Round(100*time.Millisecond))
				err = tone.Play(ctx, audio.NewPortAudioSink(sr, tone.DefaultBlockSize), clip, tone.DefaultBlockSize)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().Float64Var(&tempo, "tempo", export.DefaultTempo, "Beats per minute, one note per beat")
	return cmd
}

func newRenderCmd(opts *options) *cobra.Command {
	var (
		output string
		tempo  float64
	)
	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Render a tab to a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if tempo <= 0 {
				return export.ErrInvalidTempo
			}
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				_, n, err := loadNotation(ctx, e, id)
				if err != nil {
					return err
				}
				note, gap := tone.BeatTiming(tempo)
				clip := tone.RenderNotation(n, notation.HarmonicaMap, e.cfg.Audio.SampleRate, note, gap)

				w, closeOut, err := createOutput(output, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if err := export.WriteWAV(w, clip); err != nil {
					closeOut()
					return err
				}
				if err := closeOut(); err != nil {
					return err
				}
				e.log.WithField("output", output).Info("rendered wav")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .wav file path (- for stdout)")
	cmd.Flags().Float64Var(&tempo, "tempo", export.DefaultTempo, "Beats per minute, one note per beat")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		output string
		tempo  float64
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a tab as a MIDI file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				_, n, err := loadNotation(ctx, e, id)
				if err != nil {
					return err
				}
				w, closeOut, err := createOutput(output, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if err := export.WriteMIDI(w, n, notation.HarmonicaMap, tempo); err != nil {
					closeOut()
					return err
				}
				if err := closeOut(); err != nil {
					return err
				}
				e.log.WithField("output", output).Info("exported midi")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .mid file path (- for stdout)")
	cmd.Flags().Float64Var(&tempo, "tempo", export.DefaultTempo, "Tempo in beats per minute")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
