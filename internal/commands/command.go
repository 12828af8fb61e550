package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeToggle   Type = "toggle"
	TypeDelete   Type = "delete"
	TypePriority Type = "priority"
	TypeClear    Type = "clear"
	TypeShow     Type = "show"
	TypeSort     Type = "sort"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs carries the raw due expression; the handler resolves it against its
// own clock with ParseDue.
type AddArgs struct {
	Text string
	Due  string
}

// TargetArgs names a task by id or id prefix. An empty Target means the
// selected task.
type TargetArgs struct {
	Target string
}

type PriorityArgs struct {
	Level  string
	Target string
}

type ShowArgs struct {
	Category string
}

type SortArgs struct {
	Key string
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Target   *TargetArgs
	Priority *PriorityArgs
	Show     *ShowArgs
	Sort     *SortArgs
}

var aliases = map[string]Type{
	"new":    TypeAdd,
	"done":   TypeToggle,
	"rm":     TypeDelete,
	"del":    TypeDelete,
	"prio":   TypePriority,
	"filter": TypeShow,
	"view":   TypeShow,
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]
	kind := Type(head)
	if alias, ok := aliases[head]; ok {
		kind = alias
	}

	switch kind {
	case TypeAdd:
		return parseAdd(input, strings.TrimSpace(raw[len(parts[0]):]))
	case TypeToggle, TypeDelete:
		return parseTarget(input, kind, args)
	case TypePriority:
		return parsePriority(input, args)
	case TypeClear:
		return Command{Type: TypeClear, Raw: input}, nil
	case TypeShow:
		if len(args) == 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a view"}
		}
		return Command{Type: TypeShow, Raw: input, Show: &ShowArgs{Category: strings.Join(args, " ")}}, nil
	case TypeSort:
		if len(args) != 1 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "sort requires one key"}
		}
		return Command{Type: TypeSort, Raw: input, Sort: &SortArgs{Key: args[0]}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd splits "text due:when". Everything after the last "due:" token is
// the when expression, so "due:2026-02-10 17:00" keeps its time.
func parseAdd(raw string, rest string) (Command, error) {
	text, due := rest, ""
	lower := strings.ToLower(rest)
	if idx := strings.LastIndex(lower, "due:"); idx >= 0 && (idx == 0 || lower[idx-1] == ' ') {
		text = strings.TrimSpace(rest[:idx])
		due = strings.TrimSpace(rest[idx+len("due:"):])
		if due == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "due: requires a date"}
		}
	}
	if strings.TrimSpace(text) == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires task text"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: strings.TrimSpace(text), Due: due}}, nil
}

func parseTarget(raw string, kind Type, args []string) (Command, error) {
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes at most one task id", kind)}
	}
	target := ""
	if len(args) == 1 {
		target = args[0]
	}
	return Command{Type: kind, Raw: raw, Target: &TargetArgs{Target: target}}, nil
}

func parsePriority(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "priority requires a level and an optional task id"}
	}
	out := &PriorityArgs{Level: strings.ToLower(args[0])}
	if len(args) == 2 {
		out.Target = args[1]
	}
	return Command{Type: TypePriority, Raw: raw, Priority: out}, nil
}
