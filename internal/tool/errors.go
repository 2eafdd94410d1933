package tool

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrMissingArgument  = errors.New("missing argument")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// Error kinds reported to observers.
const (
	KindUnknownOperation = "unknown_operation"
	KindMissingArgument  = "missing_argument"
	KindInvalidArgument  = "invalid_argument"
	KindRemote           = "remote"
)

// UnknownOperationError reports a dispatch to a name with no registration.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}

func (e *UnknownOperationError) Is(target error) bool { return target == ErrUnknownOperation }

// MissingArgumentError reports required arguments absent from a call.
// Required drives the message: the operation's full required list, or the
// first missing name for operations that check each argument in turn.
// Missing holds the names absent from this call.
type MissingArgumentError struct {
	Operation string
	Required  []string
	Missing   []string
}

func (e *MissingArgumentError) Error() string {
	return requiredMessage(e.Required)
}

func (e *MissingArgumentError) Is(target error) bool { return target == ErrMissingArgument }

// InvalidArgumentError reports an argument that cannot be normalized.
type InvalidArgumentError struct {
	Operation string
	Argument  string
	Reason    string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("'%s' %s.", e.Argument, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// ErrorKind classifies a dispatch error. Anything outside the validation
// taxonomy came from the remote call.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownOperation):
		return KindUnknownOperation
	case errors.Is(err, ErrMissingArgument):
		return KindMissingArgument
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	default:
		return KindRemote
	}
}

// requiredMessage renders "'a' is a required argument.",
// "'a' and 'b' are required arguments." or
// "'a', 'b' and 'c' are required arguments.".
func requiredMessage(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	switch len(quoted) {
	case 0:
		return "missing required arguments."
	case 1:
		return quoted[0] + " is a required argument."
	default:
		head := strings.Join(quoted[:len(quoted)-1], ", ")
		return head + " and " + quoted[len(quoted)-1] + " are required arguments."
	}
}
