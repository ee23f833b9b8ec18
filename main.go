// malaykit: English to Malay phrase translator with sentence structure analysis.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minios-linux/malaykit/automaton"
	"github.com/minios-linux/malaykit/config"
	"github.com/minios-linux/malaykit/dictionary"
	"github.com/minios-linux/malaykit/grammar"
	"github.com/minios-linux/malaykit/history"
	"github.com/minios-linux/malaykit/i18n"
	"github.com/minios-linux/malaykit/logger"
	"github.com/minios-linux/malaykit/metrics"
	"github.com/minios-linux/malaykit/pofile"
	"github.com/minios-linux/malaykit/server"
	"github.com/minios-linux/malaykit/settings"
	"github.com/minios-linux/malaykit/speech"
	"github.com/minios-linux/malaykit/translator"
	"github.com/minios-linux/malaykit/yamlfile"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir   string
	dictFiles []string
	noBuiltin bool
	uiLang    string
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "malaykit",
		Short: "English to Malay phrase translator",
		Long: `malaykit: English to Malay phrase translator.

Translates short English phrases using a layered phrase dictionary. Whole
phrases are looked up first; otherwise the sentence is classified with a
small grammar, its structure is checked by a finite automaton, and valid
sentences are translated word by word.

Commands:
  translate   Translate text
  analyze     Show tokens, structure tags and validity
  shell       Interactive translation loop
  listen      Transcribe a WAV recording and translate it
  serve       Run the HTTP API
  dict        Inspect and export the effective dictionary
  grammar     Show the grammar rules and word categories
  automaton   Show the structure automaton
  history     Show or clear translation history
  auth        Manage the speech API key
  init        Create a .malaykit.yaml project file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if uiLang != "" {
				i18n.Init(uiLang)
			}
		},
	}

	// Global persistent flags, inherited by all subcommands
	pf := root.PersistentFlags()
	pf.StringVar(&rootDir, "root", ".", "Project root directory (holds .malaykit.yaml)")
	pf.StringSliceVar(&dictFiles, "dict", nil, "Extra dictionary file (.yaml or .po), may be repeated")
	pf.BoolVar(&noBuiltin, "no-builtin", false, "Do not load the built-in word bank")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: console, json")
	pf.Bool("history", true, "Record translations in history")
	pf.StringVar(&uiLang, "ui-lang", "", "Language of malaykit's own messages (default from "+i18n.EnvUILang+" or the locale)")

	root.AddCommand(
		newTranslateCmd(),
		newAnalyzeCmd(),
		newShellCmd(),
		newListenCmd(),
		newServeCmd(),
		newDictCmd(),
		newGrammarCmd(),
		newAutomatonCmd(),
		newHistoryCmd(),
		newAuthCmd(),
		newInitCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Shared setup
// ---------------------------------------------------------------------------

// app is the state every command builds from config and flags.
type app struct {
	cfg     *config.File
	sources []dictionary.Source
	dict    *dictionary.Map
	layers  []dictionary.Layer
	tr      *translator.Translator
	log     *zap.SugaredLogger
}

// loadApp reads .malaykit.yaml, applies flag and environment overrides and
// builds the dictionary and translator.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if err := config.Apply(cfg, cmd.Flags()); err != nil {
		return nil, err
	}

	sources := cfg.Sources(rootDir)
	for _, path := range dictFiles {
		sources = append(sources, dictionary.Source{Path: path})
	}

	dict, layers, err := dictionary.Build(cfg.Builtin && !noBuiltin, sources)
	if err != nil {
		return nil, fmt.Errorf("loading dictionaries: %w", err)
	}

	return &app{
		cfg:     cfg,
		sources: sources,
		dict:    dict,
		layers:  layers,
		tr:      translator.New(dict),
		log:     logger.New(cfg.Log.Level, cfg.Log.Format),
	}, nil
}

// historyPath returns the configured history database path, resolved
// against the project root, or the default under the data directory.
func (a *app) historyPath() (string, error) {
	path := a.cfg.History.Path
	if path == "" {
		return settings.HistoryPath()
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, path)
	}
	return path, nil
}

// openHistory opens the history store, or returns nil when history is
// disabled.
func (a *app) openHistory() (*history.Store, error) {
	if !a.cfg.History.Enabled {
		return nil, nil
	}
	path, err := a.historyPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path, a.log.Named(logger.ComponentHistory))
}

// openHistoryOrWarn is openHistory for commands that work without history.
func (a *app) openHistoryOrWarn() *history.Store {
	store, err := a.openHistory()
	if err != nil {
		logWarning(i18n.T("History disabled: %v"), err)
		return nil
	}
	return store
}

// recordHistory stores res; failures are reported but never fatal.
func recordHistory(ctx context.Context, store *history.Store, res translator.Result, source string) {
	if store == nil {
		return
	}
	if _, err := store.Add(ctx, res, source); err != nil {
		logWarning(i18n.T("Could not record history: %v"), err)
	}
}

// speechKey resolves the speech API key from flag/env (already folded into
// cfg by config.Apply) and then the credential store.
func (a *app) speechKey() string {
	return settings.ResolveAPIKey(settings.ProviderSpeech, a.cfg.Speech.APIKey)
}

func (a *app) speechClient(key string) *speech.Client {
	return speech.NewClient(speech.Options{
		Endpoint:   a.cfg.Speech.Endpoint,
		APIKey:     key,
		Language:   a.cfg.Speech.Language,
		SampleRate: a.cfg.Speech.SampleRate,
		Timeout:    a.cfg.Speech.Timeout,
		MaxRetries: a.cfg.Speech.MaxRetries,
	}, a.log.Named(logger.ComponentSpeech))
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr)
			logWarning("%s", i18n.T("Interrupted, stopping..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// ---------------------------------------------------------------------------
// Output helpers
// ---------------------------------------------------------------------------

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func yesNo(b bool) string {
	if b {
		return i18n.T("yes")
	}
	return i18n.T("no")
}

// joinOrNone joins items with spaces, or returns a placeholder when empty.
func joinOrNone(items []string) string {
	if len(items) == 0 {
		return i18n.T("(none)")
	}
	return strings.Join(items, " ")
}

// formatAnalysis renders an analysis record as aligned label/value lines.
func formatAnalysis(a *translator.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-11s %s\n", i18n.T("Tokens:"), joinOrNone(a.Tokens))
	fmt.Fprintf(&b, "%-11s %s\n", i18n.T("Structure:"), joinOrNone(a.Structure))
	fmt.Fprintf(&b, "%-11s %s\n", i18n.T("Type:"), a.Type)
	fmt.Fprintf(&b, "%-11s %s\n", i18n.T("Valid:"), yesNo(a.Valid))
	return b.String()
}

// formatTrace renders an automaton run, one step per line.
func formatTrace(t *automaton.Trace) string {
	var b strings.Builder
	for _, s := range t.Steps {
		line := fmt.Sprintf("  %s --%s--> %s", s.From, s.Tag, s.To)
		if s.Move != automaton.Matched {
			line += fmt.Sprintf(" (%s)", s.Move)
		}
		b.WriteString(line + "\n")
	}
	verdict := i18n.T("rejected")
	if t.Accepted {
		verdict = i18n.T("accepted")
	}
	fmt.Fprintf(&b, "%s %s (%s)\n", i18n.T("Final:"), t.Final, verdict)
	return b.String()
}

// progressBar renders a colored bar of width cells followed by the percent.
// percent is clamped to 0..100.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

// fileExists returns true if the file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		withAnalysis bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "translate TEXT...",
		Short: "Translate English text to Malay",
		Long: `Translate English text to Malay.

Arguments are joined with single spaces. Sentences whose structure is not
recognized print "` + translator.UnrecognizedStructure + `".

Examples:
  malaykit translate thank you
  malaykit translate "i love you" --analyze
  malaykit translate hello friend --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			store := a.openHistoryOrWarn()
			if store != nil {
				defer store.Close()
			}

			res := a.tr.Process(strings.Join(args, " "))
			recordHistory(cmd.Context(), store, res, history.SourceCLI)

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, res)
			}
			fmt.Fprintln(out, res.Translation)
			if withAnalysis && res.Analysis != nil {
				fmt.Fprintln(out)
				fmt.Fprint(out, formatAnalysis(res.Analysis))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withAnalysis, "analyze", false, "Also print the sentence analysis")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

// ---------------------------------------------------------------------------
// analyze
// ---------------------------------------------------------------------------

type tracedAnalysis struct {
	Analysis *translator.Analysis `json:"analysis"`
	Trace    *automaton.Trace     `json:"trace"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		trace  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze TEXT...",
		Short: "Show tokens, structure tags, type and validity",
		Long: `Classify the sentence and validate its structure without translating.

With --trace the automaton run is printed step by step.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			analysis := a.tr.Analyze(text)
			if analysis == nil {
				return errors.New(i18n.T("nothing to analyze"))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if trace {
					return printJSON(out, tracedAnalysis{Analysis: analysis, Trace: a.tr.Trace(text)})
				}
				return printJSON(out, analysis)
			}

			fmt.Fprint(out, formatAnalysis(analysis))
			if trace {
				fmt.Fprintln(out)
				fmt.Fprint(out, formatTrace(a.tr.Trace(text)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&trace, "trace", false, "Show the automaton path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")

	return cmd
}

// ---------------------------------------------------------------------------
// shell
// ---------------------------------------------------------------------------

const shellQuit = ":q"

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive translation loop",
		Long: `Read English lines from standard input and print each translation with
its analysis. Type ` + shellQuit + ` or send EOF (Ctrl-D) to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			store := a.openHistoryOrWarn()
			if store != nil {
				defer store.Close()
			}

			logInfo(i18n.T("Loaded %d dictionary entries. Type %s to quit."), a.dict.Len(), shellQuit)
			return runShell(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.tr, store)
		},
	}
}

// runShell translates in line by line until EOF or the quit command.
func runShell(ctx context.Context, in io.Reader, out io.Writer, tr *translator.Translator, store *history.Store) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(os.Stderr)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == shellQuit {
			return nil
		}

		res := tr.Process(line)
		recordHistory(ctx, store, res, history.SourceShell)

		fmt.Fprintln(out, res.Translation)
		if res.Analysis != nil {
			fmt.Fprintf(out, "  [%s] %s, %s %s\n",
				res.Analysis.Type, joinOrNone(res.Analysis.Structure), i18n.T("valid:"), yesNo(res.Analysis.Valid))
		}
	}
}

// ---------------------------------------------------------------------------
// listen
// ---------------------------------------------------------------------------

func newListenCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "listen AUDIO.wav",
		Short: "Transcribe a recording and translate it",
		Long: `Send a 16-bit PCM WAV recording to the speech recognition endpoint
configured in .malaykit.yaml, then translate the transcript.

The API key is taken from --api-key, MALAYKIT_SPEECH_KEY, or the key stored
with 'malaykit auth set-key'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			audio, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading audio: %w", err)
			}

			key := a.speechKey()
			if key == "" {
				return fmt.Errorf(i18n.T("no speech API key (use --api-key, %s or 'malaykit auth set-key')"),
					settings.EnvVarForProvider(settings.ProviderSpeech))
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			logInfo(i18n.T("Transcribing %s..."), args[0])
			transcript, err := a.speechClient(key).Transcribe(ctx, audio)
			if err != nil {
				return err
			}
			logSuccess(i18n.T("Heard: %q"), transcript)

			store := a.openHistoryOrWarn()
			if store != nil {
				defer store.Close()
			}
			res := a.tr.Process(transcript)
			recordHistory(ctx, store, res, history.SourceSpeech)

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, res)
			}
			fmt.Fprintln(out, res.Translation)
			return nil
		},
	}

	cmd.Flags().String("api-key", "", "Speech API key")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the translator as a JSON API with Prometheus metrics at /metrics.

Speech recognition (/api/listen) is enabled when an API key is available.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync() //nolint:errcheck

			store, err := a.openHistory()
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			if store != nil {
				defer store.Close()
			}

			var transcriber speech.Transcriber
			if key := a.speechKey(); key != "" {
				transcriber = a.speechClient(key)
			} else {
				logWarning("%s", i18n.T("No speech API key; /api/listen is disabled"))
			}

			srv := server.New(server.Config{
				Addr:        a.cfg.Server.Addr,
				CORSOrigins: a.cfg.Server.CORSOrigins,
				Translator:  a.tr,
				Dictionary:  a.dict,
				History:     store,
				Speech:      transcriber,
				Metrics:     metrics.New(),
				Logger:      a.log.Named(logger.ComponentServer),
			})

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			logInfo(i18n.T("Serving %d dictionary entries on %s"), a.dict.Len(), a.cfg.Server.Addr)
			if err := srv.Run(ctx); err != nil {
				return err
			}
			logSuccess("%s", i18n.T("Server stopped"))
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from .malaykit.yaml, :8080)")
	cmd.Flags().String("api-key", "", "Speech API key")

	return cmd
}

// ---------------------------------------------------------------------------
// dict
// ---------------------------------------------------------------------------

func newDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Inspect and export the effective dictionary",
	}
	cmd.AddCommand(
		newDictListCmd(),
		newDictLookupCmd(),
		newDictExportCmd(),
		newDictStatsCmd(),
	)
	return cmd
}

func newDictListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all entries, sorted by English phrase",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			entries := a.dict.Entries()
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, entries)
			}

			width := 0
			for _, e := range entries {
				width = max(width, len(e.English))
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%-*s  %s\n", width, e.English, e.Malay)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")

	return cmd
}

func newDictLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup PHRASE...",
		Short: "Look up one phrase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			phrase := strings.Join(args, " ")
			e, ok := a.dict.Entry(phrase)
			if !ok {
				return fmt.Errorf(i18n.T("phrase %q not found"), phrase)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\n", e.Malay, e.Source)
			return nil
		},
	}
}

func newDictExportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the effective dictionary as YAML or PO",
		Long: `Write the merged dictionary (built-in word bank plus all configured files)
to standard output or to a file.

Examples:
  malaykit dict export --format po -o ms.po
  malaykit dict export --no-builtin --dict extra.po --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			if output == "" {
				return dictionary.Export(cmd.OutOrStdout(), a.dict, format, a.cfg.TargetLang)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := dictionary.Export(f, a.dict, format, a.cfg.TargetLang); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			logSuccess(i18n.T("Exported %d entries to %s"), a.dict.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", dictionary.FormatYAML, "Output format: yaml, po")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{dictionary.FormatYAML, dictionary.FormatPO}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newDictStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dictionary layers and file coverage",
		Long: `Show each dictionary layer in load order with its entry count, how many
earlier entries it overrides, and how much of the file is translated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			showDictStats(cmd.OutOrStdout(), a)
			return nil
		},
	}
}

// fileCoverage reports how many entries a dictionary file declares and how
// many of them carry a translation.
func fileCoverage(src dictionary.Source) (total, translated int, err error) {
	format := src.Format
	if format == "" {
		if format, err = dictionary.DetectFormat(src.Path); err != nil {
			return 0, 0, err
		}
	}
	switch format {
	case dictionary.FormatPO:
		f, err := pofile.ParseFile(src.Path)
		if err != nil {
			return 0, 0, err
		}
		total, translated = f.Stats()
		return total, translated, nil
	default:
		f, err := yamlfile.ParseFile(src.Path)
		if err != nil {
			return 0, 0, err
		}
		total, translated = f.Stats()
		return total, translated, nil
	}
}

func showDictStats(w io.Writer, a *app) {
	formats := make(map[string]dictionary.Source, len(a.sources))
	for _, s := range a.sources {
		formats[s.Path] = s
	}

	fmt.Fprintf(w, "%s%s%s\n", colorBlue, i18n.T("Dictionary Layers"), colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "%-28s %-8s %-10s %s\n", i18n.T("Source"), i18n.T("Entries"), i18n.T("Overrides"), i18n.T("Coverage"))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	for _, l := range a.layers {
		name := l.Source
		if len(name) > 28 {
			name = "..." + name[len(name)-25:]
		}

		coverage := progressBar(100, 10)
		if src, ok := formats[l.Source]; ok {
			total, translated, err := fileCoverage(src)
			switch {
			case err != nil:
				coverage = colorRed + err.Error() + colorReset
			case total > 0:
				coverage = progressBar(translated*100/total, 10)
			default:
				coverage = progressBar(0, 10)
			}
		}
		fmt.Fprintf(w, "%-28s %-8d %-10d %s\n", name, l.Entries, len(l.Overridden), coverage)
	}

	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "%s %d\n", i18n.T("Effective entries:"), a.dict.Len())
}

// ---------------------------------------------------------------------------
// grammar / automaton
// ---------------------------------------------------------------------------

func newGrammarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grammar",
		Short: "Show the grammar rules and word categories",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s%s%s\n", colorBlue, i18n.T("Rules"), colorReset)
			for _, r := range grammar.Rules() {
				fmt.Fprintf(out, "  %s\n", r)
			}
			fmt.Fprintf(out, "\n%s%s%s\n", colorBlue, i18n.T("Categories"), colorReset)
			for _, c := range grammar.Categories() {
				fmt.Fprintf(out, "  %-5s %s\n", c, strings.Join(grammar.Words(c), ", "))
			}
		},
	}
}

func newAutomatonCmd() *cobra.Command {
	var dot, mermaid bool

	cmd := &cobra.Command{
		Use:   "automaton",
		Short: "Show the sentence structure automaton",
		Long: `Print the transition table of the structure automaton, or render it
as a Graphviz (--dot) or Mermaid (--mermaid) diagram.

Example:
  malaykit automaton --dot | dot -Tpng -o automaton.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := automaton.Sentence()
			out := cmd.OutOrStdout()

			if dot || mermaid {
				format := automaton.FormatDot
				if mermaid {
					format = automaton.FormatMermaid
				}
				diagram, err := a.Diagram(format)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, diagram)
				return nil
			}

			fmt.Fprintf(out, "%-10s %-14s %s\n", i18n.T("From"), i18n.T("Tag"), i18n.T("To"))
			fmt.Fprintln(out, strings.Repeat("─", 36))
			for _, t := range a.Transitions() {
				fmt.Fprintf(out, "%-10s %-14s %s\n", t.From, t.Tag, t.To)
			}
			fmt.Fprintln(out, strings.Repeat("─", 36))

			accepting := make([]string, 0, len(a.Accepting()))
			for _, s := range a.Accepting() {
				accepting = append(accepting, string(s))
			}
			fmt.Fprintf(out, "%s %s\n", i18n.T("Start:"), a.StartState())
			fmt.Fprintf(out, "%s %s\n", i18n.T("Accepting:"), strings.Join(accepting, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dot, "dot", false, "Render as Graphviz DOT")
	cmd.Flags().BoolVar(&mermaid, "mermaid", false, "Render as a Mermaid state diagram")
	cmd.MarkFlagsMutuallyExclusive("dot", "mermaid")

	return cmd
}

// ---------------------------------------------------------------------------
// history
// ---------------------------------------------------------------------------

func newHistoryCmd() *cobra.Command {
	var (
		limit    int
		clearAll bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear translation history",
		Long: `Show the most recent translations made with translate, shell, listen and
the HTTP API, newest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			store, err := a.openHistory()
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			if store == nil {
				return errors.New(i18n.T("history is disabled"))
			}
			defer store.Close()

			ctx := cmd.Context()
			if clearAll {
				n, err := store.Clear(ctx)
				if err != nil {
					return err
				}
				logSuccess(i18n.T("Removed %d history records"), n)
				return nil
			}

			records, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, records)
			}
			if len(records) == 0 {
				logInfo("%s", i18n.T("History is empty"))
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(out, "%s  %-8s %-7s %s → %s\n",
					r.CreatedAt.Local().Format(time.DateTime), r.Method, r.Source, r.Input, r.Translation)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all history records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")

	return cmd
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the speech API key",
		Long: `Store, inspect and remove the speech recognition API key.

Keys are stored in ~/.local/share/malaykit/auth.json (mode 0600).
MALAYKIT_SPEECH_KEY and --api-key take precedence over the stored key.`,
	}
	cmd.AddCommand(
		newAuthSetKeyCmd(),
		newAuthStatusCmd(),
		newAuthLogoutCmd(),
	)
	return cmd
}

func newAuthSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key KEY",
		Short: "Store the speech API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if key == "" {
				return errors.New(i18n.T("API key cannot be empty"))
			}
			if err := settings.SetAPIKey(settings.ProviderSpeech, key); err != nil {
				return fmt.Errorf("saving API key: %w", err)
			}
			logSuccess(i18n.T("Speech API key saved to %s"), settings.FilePath())
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stored credentials and status",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "\n%s%s%s\n", colorBlue, i18n.T("Stored Credentials"), colorReset)
			fmt.Fprintln(w, strings.Repeat("─", 60))

			if key := settings.GetAPIKey(settings.ProviderSpeech); key != "" {
				fmt.Fprintf(w, "  %-14s %s%s%s (key: %s)\n", settings.ProviderSpeech,
					colorGreen, i18n.T("configured"), colorReset, settings.MaskKey(key))
			} else {
				fmt.Fprintf(w, "  %-14s %s%s%s\n", settings.ProviderSpeech, colorRed, i18n.T("not configured"), colorReset)
			}

			env := settings.EnvVarForProvider(settings.ProviderSpeech)
			fmt.Fprintf(w, "\n  %s%s%s\n", colorYellow, i18n.T("Environment Variables"), colorReset)
			if v := os.Getenv(env); v != "" {
				fmt.Fprintf(w, "  %s: %s%s%s (%s)\n", env, colorGreen, settings.MaskKey(v), colorReset, i18n.T("overrides stored key"))
			} else {
				fmt.Fprintf(w, "  %s: %s%s%s\n", env, colorRed, i18n.T("not set"), colorReset)
			}
			fmt.Fprintln(w)
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.RemoveAll(); err != nil {
				return err
			}
			logSuccess("%s", i18n.T("All stored credentials removed"))
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .malaykit.yaml project file with defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(rootDir, config.FileName)
			if fileExists(path) && !force {
				return fmt.Errorf(i18n.T("%s already exists (use --force to overwrite)"), path)
			}
			if err := config.Default().Write(path); err != nil {
				return err
			}
			logSuccess(i18n.T("Created %s"), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "malaykit version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
			fmt.Fprintf(out, "  ui:        %s (catalogs: %s)\n", i18n.Language(), strings.Join(i18n.Available(), ", "))
		},
	}
}
