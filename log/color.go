package log

const colorReset = "\033[0m"

var levelColors = map[LogLevel]string{
	Debug: "\033[34m",
	Info:  "\033[32m",
	Warn:  "\033[33m",
	Error: "\033[31m",
	Fatal: "\033[35m",
}

// colorize wraps line in the ANSI colour of level; unknown levels stay uncoloured.
func colorize(level LogLevel, line string) string {
	code, ok := levelColors[level]
	if !ok {
		return line
	}
	return code + line + colorReset
}
