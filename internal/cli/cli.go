package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Command string

const (
	CommandStart   Command = "start"
	CommandSubmit  Command = "submit"
	CommandFinish  Command = "finish"
	CommandQuit    Command = "quit"
	CommandMic     Command = "mic"
	CommandStatus  Command = "status"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandStart:   {},
	CommandSubmit:  {},
	CommandFinish:  {},
	CommandQuit:    {},
	CommandMic:     {},
	CommandStatus:  {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Minutes    int
	Language   string
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
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case "--minutes":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--minutes requires a number")
			}
			minutes, err := strconv.Atoi(args[i])
			if err != nil || minutes <= 0 {
				return Parsed{}, fmt.Errorf("--minutes requires a positive number, got %q", args[i])
			}
			parsed.Minutes = minutes
		case "--lang":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--lang requires a language code")
			}
			parsed.Language = args[i]
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

	if parsed.Command != CommandStart && (parsed.Minutes != 0 || parsed.Language != "") {
		return Parsed{}, fmt.Errorf("--minutes and --lang only apply to %q", CommandStart)
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  start     Start a timed interview session in this terminal
  submit    Submit the currently buffered answer
  finish    End the interview early and generate the report
  quit      Abandon the session without a report
  mic       Toggle the microphone without submitting
  status    Print current session state
  devices   List available input devices
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH     Config file path (default: $XDG_CONFIG_HOME/parley/config.yaml)
  --minutes N       Session time limit in minutes (start only)
  --lang CODE       Interview language, en or ko (start only)
  -h, --help        Show help
  --version         Show version
`, binaryName)
}
