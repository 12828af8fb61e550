package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Toggle   func(TargetArgs) (Result, error)
	Delete   func(TargetArgs) (Result, error)
	Priority func(PriorityArgs) (Result, error)
	Clear    func() (Result, error)
	Show     func(ShowArgs) (Result, error)
	Sort     func(SortArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeToggle:
		if handlers.Toggle == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Toggle(*cmd.Target)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Delete(*cmd.Target)
	case TypePriority:
		if handlers.Priority == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Priority(*cmd.Priority)
	case TypeClear:
		if handlers.Clear == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Clear()
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Show(*cmd.Show)
	case TypeSort:
		if handlers.Sort == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Sort(*cmd.Sort)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
