// Package main provides the entry point for the readaloud CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/document"
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/speech"
	"github.com/dgnsrekt/readaloud/internal/speech/engines"
	"github.com/dgnsrekt/readaloud/ui"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	engineName  string
	language    string
	layout      string
	text        string
	mouse       bool
	fromClip    bool
	includeCode bool

	rootCmd = &cobra.Command{
		Use:   "readaloud [FILE|-]",
		Short: "Read text aloud with your system's voices",
		Long: paragraph(
			fmt.Sprintf("\nPick a voice and have text %s by your system's speech engine.", keyword("read aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	// grab config values from Viper
	engineName = viper.GetString("engine")
	language = viper.GetString("language")
	layout = viper.GetString("layout")
	mouse = viper.GetBool("mouse")

	if err := engines.Validate(engineName); err != nil {
		return err
	}
	if _, err := playback.ParseLayout(layout); err != nil {
		return err
	}
	if cmd.Flags().Changed("text") && fromClip {
		return errors.New("cannot use both --text and --clipboard")
	}
	return nil
}

// engineConfig collects the engine settings from the configuration.
func engineConfig() engines.Config {
	var modelDirs []string
	if dirs := viper.GetString("piper.models_dir"); dirs != "" {
		for _, d := range filepath.SplitList(dirs) {
			modelDirs = append(modelDirs, expandPath(d))
		}
	}

	return engines.Config{
		Engine:         engineName,
		Watch:          viper.GetBool("watch"),
		SayBinary:      expandPath(viper.GetString("say.binary")),
		EspeakBinary:   expandPath(viper.GetString("espeak.binary")),
		EspeakDataDir:  expandPath(viper.GetString("espeak.data_dir")),
		PiperBinary:    expandPath(viper.GetString("piper.binary")),
		PiperModelDirs: modelDirs,
		PiperCacheSize: int64(viper.GetSizeInBytes("piper.cache_size")), //nolint:gosec
		PiperTimeout:   viper.GetDuration("piper.timeout"),
		MockWPM:        viper.GetInt("mock.words_per_minute"),
	}
}

// newHost sets up the configured speech engine.
func newHost() (speech.Host, error) {
	host, err := engines.New(engineConfig())
	if err != nil {
		return nil, err
	}
	log.Debug("speech host ready", "engine", host.Name(), "available", host.IsAvailable())
	return host, nil
}

func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// loadText returns the initial text from --text, --clipboard, a file
// argument or stdin, in that order. piped reports whether stdin was used.
func loadText(cmd *cobra.Command, args []string) (s string, piped bool, err error) {
	opts := document.Options{IncludeCode: includeCode}

	switch {
	case cmd.Flags().Changed("text"):
		return text, false, nil
	case fromClip:
		s, err = document.FromClipboard()
		return s, false, err
	case len(args) == 1 && args[0] != "-":
		s, err = document.ReadFile(args[0], opts)
		return s, false, err
	}

	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	yes, err := stdinIsPipe()
	if err != nil {
		return "", false, err
	}
	if yes || (len(args) == 1 && args[0] == "-") {
		s, err = document.Read(os.Stdin, false, opts)
		if errors.Is(err, document.ErrNoContent) {
			err = nil
		}
		return s, true, err
	}
	return "", false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	content, piped, err := loadText(cmd, args)
	if err != nil {
		return err
	}
	return runTUI(content, piped)
}

func runTUI(content string, inputTTY bool) error {
	// Read environment to get styling overrides
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Language = language
	cfg.Layout = layout
	cfg.Text = content
	cfg.EnableMouse = mouse
	cfg.InputTTY = inputTTY
	cfg.ListTimeout = viper.GetDuration("list_timeout")

	host, err := newHost()
	if err != nil {
		return err
	}
	defer host.Close() //nolint:errcheck

	p, err := ui.NewProgram(cfg, host)
	if err != nil {
		return err
	}
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", engines.Auto, "speech engine ("+strings.Join(engines.Names, ", ")+")")
	rootCmd.PersistentFlags().StringVarP(&language, "language", "L", "en", "only offer voices whose language tag starts with this prefix")
	rootCmd.PersistentFlags().Bool("debug", false, "write debug logs")
	rootCmd.Flags().StringVar(&layout, "layout", string(playback.LayoutSplit), "button layout (split or toggle)")
	rootCmd.Flags().StringVarP(&text, "text", "t", "", "initial text to read")
	rootCmd.Flags().BoolVarP(&fromClip, "clipboard", "c", false, "start with the clipboard contents")
	rootCmd.Flags().BoolVar(&includeCode, "code", false, "keep code blocks when reading markdown")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("language", rootCmd.PersistentFlags().Lookup("language"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("layout", rootCmd.Flags().Lookup("layout"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("engine", engines.Auto)
	viper.SetDefault("language", "en")
	viper.SetDefault("layout", string(playback.LayoutSplit))
	viper.SetDefault("watch", true)
	viper.SetDefault("list_timeout", playback.DefaultListTimeout)
	viper.SetDefault("piper.binary", "piper")
	viper.SetDefault("piper.cache_size", "32MB")
	viper.SetDefault("mock.words_per_minute", 150)

	rootCmd.AddCommand(configCmd, manCmd, speakCmd, voicesCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "readaloud")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "readaloud")}, dirs...)
	}

	if c := os.Getenv("READALOUD_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("readaloud")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("readaloud")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "readaloud.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
