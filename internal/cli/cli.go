// Package cli parses earshot command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandListen  Command = "listen"
	CommandEnable  Command = "enable"
	CommandDisable Command = "disable"
	CommandStatus  Command = "status"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandListen:  {},
	CommandEnable:  {},
	CommandDisable: {},
	CommandStatus:  {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Debug      bool
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--debug":
			parsed.Debug = true
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--debug] <command>

Commands:
  listen    Run the wake-word listening daemon in the foreground
  enable    Tell the running daemon to start listening
  disable   Tell the running daemon to stop listening
  status    Print daemon listening state
  devices   List available input devices
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/earshot/config.conf)
  --debug         Log at debug level
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
