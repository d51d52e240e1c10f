package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/speech"
	"github.com/dgnsrekt/readaloud/internal/voice"
	"github.com/dgnsrekt/readaloud/ui"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	voicesMatch string
	voicesAll   bool
	voicesPlain bool

	voicesCmd = &cobra.Command{
		Use:     "voices",
		Short:   "List the voices offered by the speech engine",
		Long:    paragraph(fmt.Sprintf("\n%s the voices the speech engine reports, filtered by language like the interface does.", keyword("List"))),
		Example: paragraph("readaloud voices\nreadaloud voices --match dan\nreadaloud voices --all --plain"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, err := newHost()
			if err != nil {
				return err
			}
			defer host.Close() //nolint:errcheck
			return listVoices(cmd.Context(), host, cmd.OutOrStdout())
		},
	}
)

func init() {
	voicesCmd.Flags().StringVarP(&voicesMatch, "match", "q", "", "fuzzy match voice names")
	voicesCmd.Flags().BoolVarP(&voicesAll, "all", "a", false, "show voices of every language")
	voicesCmd.Flags().BoolVar(&voicesPlain, "plain", false, "plain output, one voice per line")
}

func listVoices(ctx context.Context, host speech.Host, w io.Writer) error {
	if !host.IsAvailable() {
		if u, ok := host.(*speech.Unsupported); ok && u.Reason != nil {
			return fmt.Errorf("%w: %v", playback.ErrUnsupportedPlatform, u.Reason)
		}
		return playback.ErrUnsupportedPlatform
	}

	ctx, cancel := context.WithTimeout(ctx, viper.GetDuration("list_timeout"))
	defer cancel()
	all, err := host.ListVoices(ctx)
	if err != nil {
		return fmt.Errorf("unable to list voices: %w", err)
	}

	voices := all
	if !voicesAll {
		voices = voice.Filter(all, language)
	}
	if voicesMatch != "" {
		voices = matchVoices(voices, voicesMatch)
	}

	if voicesPlain || !isTerminal(w) {
		return writePlain(w, voices)
	}
	return renderTable(w, voices, len(all))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec
}

type voiceSource []speech.Voice

func (s voiceSource) String(i int) string { return s[i].Name }
func (s voiceSource) Len() int            { return len(s) }

// matchVoices returns the voices whose names fuzzily match q, best first.
func matchVoices(voices []speech.Voice, q string) []speech.Voice {
	matches := fuzzy.FindFrom(q, voiceSource(voices))
	out := make([]speech.Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}

func writePlain(w io.Writer, voices []speech.Voice) error {
	width := 0
	for _, v := range voices {
		width = max(width, runewidth.StringWidth(v.Name))
	}
	for _, v := range voices {
		if _, err := fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight(v.Name, width), v.Language); err != nil {
			return err
		}
	}
	return nil
}

// voiceTable renders voices as a markdown table with a count footer.
func voiceTable(voices []speech.Voice, total int) string {
	var b strings.Builder
	if len(voices) == 0 {
		b.WriteString("No matching voices.\n")
	} else {
		b.WriteString("| Voice | Tag | Language |\n|---|---|---|\n")
		for _, v := range voices {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(v.Name), escapeCell(v.Language), escapeCell(voice.Describe(v)))
		}
	}
	fmt.Fprintf(&b, "\n*%s of %s voices*\n", humanize.Comma(int64(len(voices))), humanize.Comma(int64(total)))
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func renderTable(w io.Writer, voices []speech.Voice, total int) error {
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	width := 80
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil { //nolint:gosec
			width = min(tw, 120)
		}
	}

	var styleOpt glamour.TermRendererOption
	switch {
	case cfg.GlamourStyle == "" || cfg.GlamourStyle == styles.AutoStyle:
		styleOpt = glamour.WithAutoStyle()
	case styles.DefaultStyles[cfg.GlamourStyle] != nil:
		styleOpt = glamour.WithStandardStyle(cfg.GlamourStyle)
	default:
		styleOpt = glamour.WithStylePath(expandPath(cfg.GlamourStyle))
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		styleOpt,
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(voiceTable(voices, total))
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}
