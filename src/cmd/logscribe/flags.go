// FILE: logscribe/src/cmd/logscribe/flags.go
package main

import (
	"fmt"
	"strings"
)

// FlagConfig holds the application control flags. Everything else on the
// command line is handed to the config loader as an override.
type FlagConfig struct {
	ConfigFile  string
	ShowVersion bool
	Quiet       bool
	DumpConfig  string
}

// ParseFlags separates application control flags from config overrides
func ParseFlags(args []string) (*FlagConfig, []string, error) {
	flags := &FlagConfig{}
	rest := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") {
			rest = append(rest, arg)
			continue
		}

		switch name {
		case "c", "config", "dump-config":
			if !hasValue {
				if i+1 >= len(args) {
					return nil, nil, fmt.Errorf("flag %s requires a value", arg)
				}
				i++
				value = args[i]
			}
			if value == "" {
				return nil, nil, fmt.Errorf("flag %s requires a value", arg)
			}
			if name == "dump-config" {
				flags.DumpConfig = value
			} else {
				flags.ConfigFile = value
			}

		case "v", "version":
			flags.ShowVersion = true

		case "q", "quiet":
			flags.Quiet = !hasValue || value == "true"

		default:
			rest = append(rest, arg)
		}
	}

	return flags, rest, nil
}
