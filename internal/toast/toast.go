package toast

// Level classifies a transient user-facing message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toaster surfaces transient messages to the user. Implementations must not
// block; state managers call Toast while holding their own locks.
type Toaster interface {
	Toast(level Level, message string)
}

// Func adapts a plain function to the Toaster interface.
type Func func(level Level, message string)

func (f Func) Toast(level Level, message string) {
	f(level, message)
}

// Nop discards all messages.
var Nop Toaster = Func(func(Level, string) {})
