package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/speech"
	"github.com/dgnsrekt/readaloud/internal/voice"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	speakVoice string

	speakCmd = &cobra.Command{
		Use:     "speak [TEXT...]",
		Short:   "Read text aloud without the interface",
		Long:    paragraph(fmt.Sprintf("\n%s the given text, or stdin, and exit when done. Ctrl+C stops speaking.", keyword("Speak"))),
		Example: paragraph("readaloud speak Hello there\necho 'Good morning' | readaloud speak --voice Daniel"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := strings.Join(args, " ")
			if s == "" {
				var err error
				if s, _, err = loadText(cmd, nil); err != nil {
					return err
				}
			}

			host, err := newHost()
			if err != nil {
				return err
			}
			defer host.Close() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return speakText(ctx, host, s, speakVoice, cmd.ErrOrStderr())
		},
	}
)

func init() {
	speakCmd.Flags().StringVarP(&speakVoice, "voice", "v", "", "voice name (default: first matching voice)")
}

// cliBinding prints status changes; there are no buttons to update.
type cliBinding struct {
	w      io.Writer
	status playback.Status
}

func (b *cliBinding) SetStatus(s playback.Status) {
	b.status = s
	if s.Level == playback.LevelError {
		fmt.Fprintln(b.w, errorStyle.Render(s.Text))
		return
	}
	fmt.Fprintln(b.w, statusStyle.Render(s.Text))
}

func (b *cliBinding) SetVoices([]speech.Voice, string) {}
func (b *cliBinding) SetSpeakEnabled(bool)             {}
func (b *cliBinding) SetStopEnabled(bool)              {}
func (b *cliBinding) SetSpeakLabel(string)             {}

// speakText speaks s with the named voice and waits until the utterance ends,
// fails or ctx is cancelled.
func speakText(ctx context.Context, host speech.Host, s, voiceName string, w io.Writer) error {
	b := &cliBinding{w: w}
	dir := voice.NewDirectory(language)
	ctl := playback.New(host, dir, voice.NewSelector(dir), b, playback.Options{})

	// The controller's commands are run inline; there is no event loop.
	if ctl.Start() == nil {
		return playback.ErrUnsupportedPlatform
	}
	ctl.Update(playback.ListVoicesCmd(host, viper.GetDuration("list_timeout"))())
	if voiceName != "" {
		ctl.Update(playback.ChooseVoiceMsg{Name: voiceName})
	}
	if err := ctl.Speak(s); err != nil {
		return err
	}

	for ctl.State() == playback.Speaking {
		select {
		case <-ctx.Done():
			log.Debug("speak interrupted", "err", ctx.Err())
			_ = ctl.Stop()
		case ev, ok := <-host.Events():
			if !ok {
				return speech.ErrClosed
			}
			ctl.Update(ev)
		}
	}

	if b.status.Level == playback.LevelError {
		return errors.New(b.status.Text)
	}
	return nil
}
