// FILE: logscribe/src/cmd/logscribe/help.go
package main

import (
	"fmt"
	"os"
)

const helpText = `LogScribe: forwards tagged JSON events to a Scribe collector.

Usage:
  logscribe [options] [--section.key=value ...]

Application Control:
  -c, --config <path>      Path to configuration file (default: ~/.config/logscribe.toml)
  -h, --help               Display this help message and exit
  -v, --version            Display version information and exit
  -q, --quiet              Suppress all console output, including errors
      --dump-config <path> Write the resolved configuration as TOML and exit

Configuration Overrides:
  --scribe.host=<host>             Collector host (default: localhost)
  --scribe.port=<port>             Collector port (default: 1463)
  --scribe.remove_prefix=<prefix>  Strip "<prefix>." from tags
  --scribe.field_ref=<field>       Record field shipped as the message
  --buffer.flush_interval_seconds=<n>
  --logging.level=<level>          debug, info, warn, error

Configuration Sources (Precedence: CLI > Env > File > Defaults):
  - Environment variables use the LOGSCRIBE_ prefix, e.g. LOGSCRIBE_SCRIBE_HOST
  - LOGSCRIBE_CONFIG_FILE and LOGSCRIBE_CONFIG_DIR locate the TOML file

Examples:
  # Ship JSON lines from stdin to a local collector
  tail -F app.log | logscribe --scribe.remove_prefix=app

  # Start with a custom config
  logscribe -c /etc/logscribe/prod.toml
`

// CheckAndDisplayHelp scans arguments for help flags and prints help text if found.
func CheckAndDisplayHelp(args []string) {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			fmt.Fprint(os.Stdout, helpText)
			os.Exit(0)
		}
	}
}
