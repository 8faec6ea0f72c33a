// Package cli parses neuroscan argv into a command plus its options.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Command string

const (
	CommandScreen   Command = "screen"
	CommandImage    Command = "image"
	CommandVoice    Command = "voice"
	CommandStop     Command = "stop"
	CommandCancel   Command = "cancel"
	CommandStatus   Command = "status"
	CommandResults  Command = "results"
	CommandLogin    Command = "login"
	CommandRegister Command = "register"
	CommandLogout   Command = "logout"
	CommandDevices  Command = "devices"
	CommandDoctor   Command = "doctor"
	CommandVersion  Command = "version"
	CommandHelp     Command = "help"
)

// commandSpec lists the flags a command accepts and how many positionals it takes.
type commandSpec struct {
	flags         []string
	maxPositional int
}

var identityFlags = []string{"--patient-id", "--name"}

var commandSpecs = map[Command]commandSpec{
	CommandScreen:   {flags: append([]string{"--image", "--voice"}, identityFlags...)},
	CommandImage:    {flags: identityFlags, maxPositional: 1},
	CommandVoice:    {flags: append([]string{"--hint"}, identityFlags...), maxPositional: 1},
	CommandStop:     {},
	CommandCancel:   {},
	CommandStatus:   {},
	CommandResults:  {},
	CommandLogin:    {flags: []string{"--role", "--username", "--password"}},
	CommandRegister: {flags: []string{"--username", "--password", "--name", "--age", "--contact"}},
	CommandLogout:   {},
	CommandDevices:  {},
	CommandDoctor:   {},
	CommandVersion:  {},
	CommandHelp:     {},
}

// Parsed is the validated invocation.
type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool

	ImagePath string
	VoicePath string
	Hint      string

	PatientID string
	Name      string

	Role     string
	Username string
	Password string
	Age      *int
	Contact  string
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
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			spec, ok := commandSpecs[cmd]
			if !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if err := parseCommandArgs(&parsed, spec, args[i+1:]); err != nil {
				return Parsed{}, err
			}
			if err := validateCommand(parsed); err != nil {
				return Parsed{}, err
			}
			return parsed, nil
		}
	}

	return parsed, nil
}

func parseCommandArgs(parsed *Parsed, spec commandSpec, args []string) error {
	positionals := make([]string, 0, spec.maxPositional)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			if len(positionals) >= spec.maxPositional {
				return fmt.Errorf("unexpected arguments after command %q", parsed.Command)
			}
			positionals = append(positionals, arg)
			continue
		}

		if !acceptsFlag(spec, arg) {
			return fmt.Errorf("unknown flag for %s: %s", parsed.Command, arg)
		}
		i++
		if i >= len(args) {
			return fmt.Errorf("%s requires a value", arg)
		}
		if err := setFlag(parsed, arg, args[i]); err != nil {
			return err
		}
	}

	if len(positionals) > 0 {
		switch parsed.Command {
		case CommandImage:
			parsed.ImagePath = positionals[0]
		case CommandVoice:
			parsed.VoicePath = positionals[0]
		}
	}
	return nil
}

func acceptsFlag(spec commandSpec, flag string) bool {
	for _, f := range spec.flags {
		if f == flag {
			return true
		}
	}
	return false
}

func setFlag(parsed *Parsed, flag string, value string) error {
	switch flag {
	case "--image":
		parsed.ImagePath = value
	case "--voice":
		parsed.VoicePath = value
	case "--hint":
		parsed.Hint = value
	case "--patient-id":
		parsed.PatientID = strings.TrimSpace(value)
	case "--name":
		parsed.Name = strings.TrimSpace(value)
	case "--role":
		parsed.Role = strings.ToLower(strings.TrimSpace(value))
	case "--username":
		parsed.Username = strings.TrimSpace(value)
	case "--password":
		parsed.Password = value
	case "--age":
		age, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || age <= 0 {
			return fmt.Errorf("--age must be a positive integer, got %q", value)
		}
		parsed.Age = &age
	case "--contact":
		parsed.Contact = strings.TrimSpace(value)
	}
	return nil
}

func validateCommand(parsed Parsed) error {
	switch parsed.Command {
	case CommandScreen:
		if parsed.ImagePath == "" {
			return errors.New("screen requires --image PATH")
		}
	case CommandImage:
		if parsed.ImagePath == "" {
			return errors.New("image requires a PATH")
		}
	case CommandLogin:
		if parsed.Username == "" || parsed.Password == "" {
			return errors.New("login requires --username and --password")
		}
		switch parsed.Role {
		case "", "patient", "doctor":
		default:
			return fmt.Errorf("--role must be patient or doctor, got %q", parsed.Role)
		}
	case CommandRegister:
		if parsed.Username == "" || parsed.Password == "" || parsed.Name == "" {
			return errors.New("register requires --username, --password, and --name")
		}
	}
	return nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [args]

Commands:
  screen    Analyze a spiral drawing, then a voice sample (records when --voice is absent)
  image     Analyze a spiral drawing and generate advice
  voice     Analyze a voice sample from PATH, or record one
  stop      Stop the active recording and analyze it
  cancel    Cancel the active recording
  status    Print the active recording state
  results   List recent screening results
  login     Sign in and remember the identity
  register  Create a patient account
  logout    Forget the saved identity
  devices   List available input devices
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Command flags:
  screen    --image PATH [--voice PATH] [--patient-id ID] [--name NAME]
  image     PATH [--patient-id ID] [--name NAME]
  voice     [PATH] [--hint LABEL] [--patient-id ID] [--name NAME]
  login     --username U --password P [--role patient|doctor]
  register  --username U --password P --name N [--age A] [--contact C]

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/neuroscan/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
