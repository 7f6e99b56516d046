package cmd

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags
	Flags map[string]any

	// Raw unparsed arguments (for custom parsing)
	Raw []string
}

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "type" or "t"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "t")
	Type        string `json:"type"`              // "string", "bool", "int", "stringSlice"
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
	Multiple    bool   `json:"multiple"`          // Can be specified multiple times
}

func NewFlagSet(flags ...*CommandFlag) *CommandFlagSet {
	set := &CommandFlagSet{Flags: make(map[string]*CommandFlag, len(flags))}
	for _, flag := range flags {
		set.Flags[flag.Name] = flag
	}
	return set
}

func (a *CommandArgs) Bool(name string) bool {
	value, _ := a.Flags[name].(bool)
	return value
}

func (a *CommandArgs) String(name string) string {
	value, _ := a.Flags[name].(string)
	return value
}

func (a *CommandArgs) Int(name string) int64 {
	value, _ := a.Flags[name].(int64)
	return value
}

func (a *CommandArgs) Strings(name string) []string {
	switch value := a.Flags[name].(type) {
	case []string:
		return value
	case string:
		return []string{value}
	default:
		return nil
	}
}

// Arg returns the positional argument at index or fallback when missing.
func (a *CommandArgs) Arg(index int, fallback string) string {
	if index < len(a.Args) {
		return a.Args[index]
	}
	return fallback
}
