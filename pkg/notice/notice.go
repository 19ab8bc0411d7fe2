package notice

// Level of a user-facing notice
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notice is a transient message for the user. Mutation flows return it
// instead of displaying anything themselves.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Success(message string) Notice {
	return Notice{Level: LevelSuccess, Message: message}
}

func Error(message string) Notice {
	return Notice{Level: LevelError, Message: message}
}

func Info(message string) Notice {
	return Notice{Level: LevelInfo, Message: message}
}

// IsZero reports whether there is nothing to show
func (n Notice) IsZero() bool {
	return n.Message == ""
}

// IsError reports whether n describes a failure
func (n Notice) IsError() bool {
	return n.Level == LevelError
}

func (n Notice) String() string {
	return string(n.Level) + ": " + n.Message
}
