package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
)

// EnvironmentVar names the deployment environment stamped on server logs.
const EnvironmentVar = "DEVFOLIO_ENV"

var (
	// CLILogger is used by CLI commands (SIMPLE profile).
	CLILogger *logging.Logger

	// ServerLogger is used by the HTTP server and everything it calls
	// (STRUCTURED profile, JSON on stderr). Packages nil-check it so they stay
	// usable from tests and the CLI.
	ServerLogger *logging.Logger
)

// InitCLILogger initializes CLILogger, at DEBUG when verbose.
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		fatalInit("Failed to initialize CLI logger", err)
	}
	if verbose {
		logger.SetLevel(logging.DEBUG)
	}
	CLILogger = logger
}

// InitServerLogger initializes ServerLogger. The optional namespace becomes a
// static field on every record.
func InitServerLogger(serviceName string, logLevel string, namespace ...string) {
	logger, err := logging.New(ServerLoggerConfig(serviceName, logLevel, namespace...))
	if err != nil {
		fatalInit("Failed to initialize server logger", err)
	}
	ServerLogger = logger
}

// ServerLoggerConfig builds the structured logger configuration: JSON to
// stderr with correlation middleware, caller info and stack traces.
func ServerLoggerConfig(serviceName string, logLevel string, namespace ...string) *logging.LoggerConfig {
	staticFields := make(map[string]any)
	if len(namespace) > 0 && namespace[0] != "" {
		staticFields["namespace"] = namespace[0]
	}

	return &logging.LoggerConfig{
		Profile:      logging.ProfileStructured,
		DefaultLevel: parseLogLevel(logLevel),
		Service:      serviceName,
		Environment:  environment(),
		StaticFields: staticFields,
		Middleware: []logging.MiddlewareConfig{
			{
				Name:    "correlation",
				Enabled: true,
				Order:   100,
				Config:  make(map[string]any),
			},
		},
		Sinks: []logging.SinkConfig{
			{
				Type:   "console",
				Format: "json",
				Console: &logging.ConsoleSinkConfig{
					Stream:   "stderr",
					Colorize: false,
				},
			},
		},
		EnableCaller:     true,
		EnableStacktrace: true,
	}
}

// parseLogLevel maps config levels to gofulmen severities. Unknown values log at INFO.
func parseLogLevel(levelStr string) string {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return "TRACE"
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	default:
		return "INFO"
	}
}

func environment() string {
	if env := strings.TrimSpace(os.Getenv(EnvironmentVar)); env != "" {
		return env
	}
	return "production"
}

// fatalInit exits with ExitConfigInvalid. No logger exists yet, so it writes
// to stderr directly.
func fatalInit(msg string, err error) {
	code := int(foundry.ExitConfigInvalid)
	name := "EXIT_CONFIG_INVALID"
	if info, ok := foundry.GetExitCodeInfo(foundry.ExitConfigInvalid); ok {
		code, name = info.Code, info.Name
	}
	fmt.Fprintf(os.Stderr, "FATAL: %s: %v\nExit Code: %d (%s)\n", msg, err, code, name)
	os.Exit(code)
}
