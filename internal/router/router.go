// Package router classifies chat messages into commands.
package router

import "strings"

// Kind is the handler a message is dispatched to.
type Kind int

const (
	Repeat Kind = iota + 1
	Eval
	Shell
	Help
	Status
)

func (k Kind) String() string {
	switch k {
	case Repeat:
		return "repeat"
	case Eval:
		return "eval"
	case Shell:
		return "shell"
	case Help:
		return "help"
	case Status:
		return "status"
	}
	return "unknown"
}

// Markers recognized at the start of a message.
const (
	RepeatMarker = "+"
	EvalPrefix   = "r#"
	HelpPrefix   = "h#"
	StatusPrefix = "s#"
)

// ShellPrefixes start a shell command, in the order they are tried.
var ShellPrefixes = []string{",", "，", ".", "。"}

// Dispatch is a classified command. Arg is the text after the marker.
type Dispatch struct {
	Kind Kind
	Arg  string
}

// Route classifies text. It reports false when text is not a command.
func Route(text string) (Dispatch, bool) {
	if text == RepeatMarker {
		return Dispatch{Kind: Repeat}, true
	}
	if arg, ok := strings.CutPrefix(text, EvalPrefix); ok {
		return Dispatch{Kind: Eval, Arg: arg}, true
	}
	for _, p := range ShellPrefixes {
		if arg, ok := strings.CutPrefix(text, p); ok {
			return Dispatch{Kind: Shell, Arg: arg}, true
		}
	}
	if arg, ok := strings.CutPrefix(text, HelpPrefix); ok {
		return Dispatch{Kind: Help, Arg: arg}, true
	}
	if arg, ok := strings.CutPrefix(text, StatusPrefix); ok {
		return Dispatch{Kind: Status, Arg: arg}, true
	}
	return Dispatch{}, false
}
