package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"passcan/internal/config"
	"passcan/internal/detect"
	"passcan/internal/logging"
	"passcan/internal/model"
	"passcan/internal/report"
	"passcan/internal/scan"
	"passcan/internal/selector"
	"passcan/internal/tui"
	"passcan/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
	"go.uber.org/zap"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "max5010cs",
		Repository: "passcan",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from " + report.ProjectURL + "/releases")
	} else {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: passcan [options] [path]\n\n")
		fmt.Fprintf(os.Stderr, "passcan scans a directory tree for hard-coded secrets before you push.\n")
		fmt.Fprintf(os.Stderr, "It reports every candidate file as Clean, Alert (secrets found) or Error (unreadable).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  PASSCAN_WORKERS, PASSCAN_MODE, PASSCAN_LOG_LEVEL, PASSCAN_LOG_FORMAT,\n")
		fmt.Fprintf(os.Stderr, "  PASSCAN_MAX_LINE_BYTES, PASSCAN_MAX_CONTENT_BYTES, PASSCAN_DEBOUNCE\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  passcan                 # Scan the current directory\n")
		fmt.Fprintf(os.Stderr, "  passcan ~/src/app -v    # Scan a project, listing every file\n")
		fmt.Fprintf(os.Stderr, "  passcan --watch .       # Rescan on every change\n")
		fmt.Fprintf(os.Stderr, "  passcan -j -o out.json  # Save results as JSON\n")
		fmt.Fprintf(os.Stderr, "  passcan --tui           # Browse results interactively\n")
	}

	watchFlag := pflag.BoolP("watch", "w", false, "Watch the directory and rescan on changes")
	verboseFlag := pflag.BoolP("verbose", "v", false, "List every scanned file and enable debug logging")
	jsonFlag := pflag.BoolP("json", "j", false, "Output results as JSON")
	tuiFlag := pflag.BoolP("tui", "t", false, "Browse results in an interactive terminal UI")
	outputFlag := pflag.StringP("output", "o", "", "Write the report to the specified file")
	workersFlag := pflag.IntP("workers", "n", 0, "Number of parallel scan workers (default: number of CPUs)")
	wholeFileFlag := pflag.Bool("whole-file", false, "Match patterns against whole file contents instead of line by line")
	exitCodeFlag := pflag.Bool("exit-code", false, "Exit with status 1 when any secret is found")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for a newer release")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("passcan version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if pflag.Lookup("workers").Changed {
		cfg.Workers = *workersFlag
	}
	if *wholeFileFlag {
		cfg.Mode = detect.ModeContent.String()
	}
	if *verboseFlag {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	root := "."
	if pflag.NArg() > 0 {
		root = pflag.Arg(0)
	}
	if expanded, err := homedir.Expand(root); err == nil {
		root = expanded
	}

	runner := scan.NewRunner(scan.Options{
		Workers:  cfg.Workers,
		Detector: detect.New(cfg.DetectOptions(), log),
		Selector: selector.New(selector.DefaultRules(), log),
		Logger:   log,
	})

	switch {
	case *tuiFlag:
		runTuiMode(root, runner)
	case *watchFlag:
		runWatchMode(root, runner, cfg, log, *verboseFlag)
	case *jsonFlag:
		r := runner.Run(root)
		if err := writeOutput(*outputFlag, func(w io.Writer) error { return report.JSON(w, r) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		exitOnSecrets(*exitCodeFlag, r)
	default:
		r := runReportMode(root, runner, *outputFlag, *verboseFlag)
		exitOnSecrets(*exitCodeFlag, r)
	}
}

// runScan runs one scan with a progress bar on stderr and, in verbose mode,
// a line per scanned file.
func runScan(root string, runner *scan.Runner, p *report.Printer, verbose bool) model.Report {
	bar := report.NewProgress(os.Stderr)
	r := runner.RunWith(root, bar.Start, func(res model.ScanResult) {
		bar.Inc()
	})
	bar.Finish()
	if verbose {
		for _, res := range r.Results {
			p.Verbose(res.Path)
		}
		fmt.Println()
	}
	return r
}

func runReportMode(root string, runner *scan.Runner, outputFile string, verbose bool) model.Report {
	if outputFile == "" {
		p := report.New(os.Stdout)
		p.Banner(root)
		r := runScan(root, runner, p, verbose)
		p.Full(r)
		return r
	}

	r := runScan(root, runner, report.New(os.Stdout), verbose)
	err := writeOutput(outputFile, func(w io.Writer) error {
		p := report.New(w)
		p.Banner(root)
		p.Full(r)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report to %s: %v\n", outputFile, err)
		os.Exit(1)
	}
	fmt.Printf("Report saved to %s\n", outputFile)
	return r
}

func runWatchMode(root string, runner *scan.Runner, cfg config.Config, log *zap.Logger, verbose bool) {
	p := report.New(os.Stdout)
	p.WatchBanner(root)

	w, err := watch.New(root, selector.DefaultRules(), cfg.Debounce, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p.Full(runScan(root, runner, p, verbose))
	err = w.Run(ctx, func() {
		p.Rescan()
		p.Full(runScan(root, runner, p, verbose))
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTuiMode(root string, runner *scan.Runner) {
	m := tui.InitialModel(root, runner)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}

// writeOutput sends output to stdout, or to path when one is given.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func exitOnSecrets(enabled bool, r model.Report) {
	if enabled && r.Summary.FilesWithSecrets > 0 {
		os.Exit(1)
	}
}
