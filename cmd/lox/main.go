package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"lox/internal/config"
	"lox/internal/driver"
	"lox/internal/irlog"
	"lox/internal/repl"
)

var (
	// Version is the current version of the lox binary, set via -ldflags at
	// build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help     bool
	version  bool
	debugAST bool
	logLevel string
	logFile  string
	noColor  bool
	rcPath   string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.BoolVar(&debugAST, "debug-ast", false, "Print the parsed AST as s-expressions before running")
	flag.StringVar(&logLevel, "log-level", "none", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	flag.BoolVar(&noColor, "no-color", false, "Disable ANSI color in log output")
	flag.StringVar(&rcPath, "rc", ".loxrc.toml", "Path to an optional config file")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	cfg, err := config.Load(rcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", rcPath, err)
		os.Exit(driver.ExitStaticError)
	}
	if logLevel == "none" && cfg.LogLevel != "" {
		logLevel = cfg.LogLevel
	}
	if logFile == "" {
		logFile = cfg.LogFile
	}
	irlog.Init(logLevel, logFile, !(noColor || cfg.NoColor))
	defer irlog.Close()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevelFromString(logLevel),
	})))

	var debugASTSink *os.File
	if debugAST || cfg.DebugAST {
		debugASTSink = os.Stderr
	}

	args := flag.Args()
	switch len(args) {
	case 0:
		if err := repl.New(os.Stdout, os.Stderr).Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(driver.ExitStaticError)
		}
	case 1:
		opts := driver.Options{}
		if debugASTSink != nil {
			opts.DebugASTSink = debugASTSink
		}
		os.Exit(driver.RunFile(args[0], opts))
	default:
		printUsage()
		os.Exit(driver.ExitOK)
	}
}

func slogLevelFromString(level string) slog.Level {
	switch level {
	case "trace", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

func printVersion() {
	fmt.Printf("lox version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printUsage() {
	fmt.Println("Usage: lox [options] [script]")
}

func printHelp() {
	fmt.Printf(`Usage: lox [options] [script]

Options:
  -debug-ast         Print the parsed AST as s-expressions before running.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: trace, debug, info, warn, error, none. Default is 'none'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.
  -no-color          Disable ANSI color in log output.
  -rc <path>         Path to an optional config file. Default is '.loxrc.toml'.

Details:
With no script argument, lox starts an interactive REPL. With one script
argument, it runs that file and exits 65 on a static (scan/parse/resolve)
error or 70 on a runtime error.
`)
}
