package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/xmltab/internal/config"
	"github.com/oakwood-commons/xmltab/internal/export"
	"github.com/oakwood-commons/xmltab/internal/formatter"
	"github.com/oakwood-commons/xmltab/internal/limiter"
	"github.com/oakwood-commons/xmltab/internal/ui"
	"github.com/oakwood-commons/xmltab/pkg/logger"
	"github.com/oakwood-commons/xmltab/pkg/settings"
	"github.com/oakwood-commons/xmltab/pkg/xmltable"
)

var (
	recordTag      string
	simpleView     bool
	grouping       bool
	hideResolved   bool
	filterSpecs    []string
	sortSpec       string
	whereExpr      string
	output         string // for rootCmd (default: table)
	outFile        string
	limitRecords   int
	offsetRecords  int
	tailRecords    int
	interactive    bool
	renderSnapshot bool
	pressKeys      []string
	configFile     string
	debug          bool
	noColor        bool
	viewWidth      int
	viewHeight     int
)

var rootCtx = context.Background()

var rootCmd = &cobra.Command{
	Use:   "xmltab [file]",
	Short: cliShortHelp(),
	Long:  cliLongHelp(),
	Example: "\n  xmltab report.xml\n  xmltab report.xml -f ErrorMessage=broken -s BL:desc\n" +
		"  xmltab report.xml --simple=false -o csv --out-file errors.csv\n" +
		"  xmltab catalog.xml -t book -w 'num(row.price) > 9'\n  cat report.xml | xmltab -i\n",
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
			return usageErrorf("%v", err)
		}
		return nil
	},
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		// --debug maps to zap.DebugLevel (-1), else zap.InfoLevel (0)
		lgr := logger.Get(logLevel())
		lgr = logger.WithValues(lgr, logger.BinaryKey, settings.CliBinaryName, logger.CommandKey, cmd.Name())
		rootCtx = logger.WithLogger(context.Background(), lgr)
	},
	RunE: runRoot,
}

func logLevel() int8 {
	if debug {
		return -1
	}
	return 0
}

func runRoot(cmd *cobra.Command, args []string) error {
	lgr := *logger.FromContext(rootCtx)

	limits := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	if err := limits.Validate(); err != nil {
		return usageErrorf("record limiting: %v", err)
	}
	out, err := resolveOutput(cmd)
	if err != nil {
		return err
	}

	profile, err := config.Load(configFile)
	if err != nil {
		return runError(err)
	}
	formatter.SetTableTheme(ui.ThemeFromConfig(profile.Theme).TableColors())

	in, data, err := readInput(args)
	if errors.Is(err, errShowHelp) {
		return cmd.Help()
	}
	if err != nil {
		return runError(err)
	}

	run := settings.NewCliParams()
	run.MinLogLevel = logLevel()
	run.Input = in
	run.Interactive = interactive || renderSnapshot
	run.NoColor = noColor || os.Getenv("NO_COLOR") != "" || (!run.Interactive && stdoutIsPiped())
	ctx := settings.IntoContext(rootCtx, run)

	session := xmltable.NewSession(profile, lgr)
	session.RecordTag = recordTag
	applyViewToggles(cmd, session)
	if _, err := session.LoadBytes(in.Name, data); err != nil {
		var pe *xmltable.ParseError
		if errors.As(err, &pe) {
			lgr.V(1).Info("parse failed", logger.InputKey, in.Name, "type", string(pe.Type), "error", err.Error())
			return runError(errors.New(pe.Message))
		}
		return runError(err)
	}
	lgr.V(1).Info(session.Status(), logger.InputKey, in.Name, "path", session.RecordPath())

	if err := applyFilterFlags(session.Engine, filterSpecs); err != nil {
		return err
	}
	if err := applySortFlag(session.Engine, sortSpec); err != nil {
		return err
	}
	if err := applyWhereFlag(session.Engine, whereExpr, lgr); err != nil {
		return err
	}

	if run.Interactive {
		return runInteractive(ctx, session, profile)
	}

	text, err := renderOutput(session, out, renderOptions{NoColor: run.NoColor, Width: viewWidth, Limit: limits})
	if err != nil {
		return runError(err)
	}
	if outFile != "" {
		if err := os.WriteFile(outFile, []byte(text), 0o644); err != nil {
			return runError(fmt.Errorf("write %s: %w", outFile, err))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s output to %s\n", out, outFile)
		return nil
	}
	fmt.Print(text) //nolint:forbidigo
	return nil
}

// resolveOutput validates --output. Without it, --out-file picks the format
// from its extension.
func resolveOutput(cmd *cobra.Command) (string, error) {
	out := strings.ToLower(strings.TrimSpace(output))
	if !cmd.Flags().Changed("output") && outFile != "" {
		if f, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(outFile), ".")); err == nil {
			return string(f), nil
		}
	}
	if !validOutput(out) {
		return "", usageErrorf("invalid --output %q (want one of %s)", output, strings.Join(outputFormats(), "|"))
	}
	if f, err := export.ParseFormat(out); err == nil {
		return string(f), nil
	}
	return out, nil
}

// applyViewToggles overrides the configured view defaults with flags the
// user set. It runs before loading so the columns follow the simple view.
func applyViewToggles(cmd *cobra.Command, s *xmltable.Session) {
	flags := cmd.Flags()
	if flags.Changed("simple") {
		s.Engine.SetSimpleView(simpleView)
	}
	if flags.Changed("group") {
		s.Engine.SetGroupingEnabled(grouping)
	}
	if flags.Changed("hide-resolved") {
		s.Engine.SetSuppressResolved(hideResolved)
	}
}

func runInteractive(ctx context.Context, s *xmltable.Session, profile config.Config) error {
	run := settings.FromContextOrDefault(ctx)
	opts := ui.Options{
		NoColor: run.NoColor,
		Theme:   ui.ThemeFromConfig(profile.Theme),
		Width:   viewWidth,
		Height:  viewHeight,
	}

	if renderSnapshot {
		detW, detH := detectTerminalSize()
		size := resolveViewSize(viewWidth, viewHeight, detW, detH)
		opts.Width, opts.Height = size.Width, size.Height
		fmt.Println(ui.Snapshot(s, opts, pressKeys)) //nolint:forbidigo
		return nil
	}

	progOpts, cleanup := getProgramOptions()
	defer cleanup()
	if err := ui.Run(ctx, s, opts, pressKeys, progOpts...); err != nil {
		return runError(fmt.Errorf("interactive view: %w", err))
	}
	return nil
}

func defaultProfile() config.Config {
	cfg, err := config.Default()
	if err != nil {
		logger.GetGlobalLogger().Error(err, "embedded config is invalid")
	}
	return cfg
}

func cliShortHelp() string {
	if d := strings.TrimSpace(defaultProfile().App.About.Description); d != "" {
		return d
	}
	return "Turn XML reports into tables"
}

func cliLongHelp() string {
	return defaultProfile().HelpDescription()
}

func init() { //nolint:gochecknoinits
	flags := rootCmd.Flags()
	flags.StringVarP(&recordTag, "record-tag", "t", "", "element name of the records (default: detected)")
	flags.BoolVar(&simpleView, "simple", true, "show only the priority columns (default from config)")
	flags.BoolVar(&grouping, "group", true, "group rows by the group key (default from config)")
	flags.BoolVar(&hideResolved, "hide-resolved", true, "hide rows whose codes mark them resolved (default from config)")
	flags.StringArrayVarP(&filterSpecs, "filter", "f", nil, "keep rows where column=value; repeat for more values or columns; 'column=' matches blank cells")
	flags.StringVarP(&sortSpec, "sort", "s", "", "sort by column[:asc|desc]")
	flags.StringVarP(&whereExpr, "where", "w", "", "CEL row filter using row, codes and key, e.g. 'row.BL.startsWith(\"MSC\")'")
	flags.StringVarP(&output, "output", "o", outputTable, "output format: "+strings.Join(outputFormats(), "|"))
	flags.StringVar(&outFile, "out-file", "", "write the output to a file instead of stdout")
	flags.IntVar(&limitRecords, "limit", 0, "show only N rows (groups when grouped)")
	flags.IntVar(&offsetRecords, "offset", 0, "skip the first N rows (groups when grouped)")
	flags.IntVar(&tailRecords, "tail", 0, "show the last N rows (mutually exclusive with --limit; ignores --offset)")
	flags.BoolVarP(&interactive, "interactive", "i", false, "start the interactive table view")
	flags.BoolVar(&renderSnapshot, "snapshot", false, "render the interactive view once and exit; honors --width/--height and --press")
	flags.StringArrayVar(&pressKeys, "press", nil, "simulate keys on startup; use <Key> for special keys (e.g. <Enter>, <Down>, <Esc>)")
	flags.StringVar(&configFile, "config-file", "", "path to a YAML profile merged over the defaults")
	flags.BoolVar(&debug, "debug", false, "enable debug logging on stderr")
	flags.BoolVar(&noColor, "no-color", false, "disable color output")
	flags.IntVar(&viewWidth, "width", 0, "output width in columns (default: terminal width)")
	flags.IntVar(&viewHeight, "height", 0, "interactive view height in rows (default: terminal height)")
	_ = flags.MarkHidden("snapshot")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})
	rootCmd.Version = settings.VersionInformation.BuildVersion
	rootCmd.SetVersionTemplate(settings.VersionInformation.String() + "\n")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
