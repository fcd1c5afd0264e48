package operation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	HaltCommand = "HALT"
	procPrefix  = "Proc"
	fieldCount  = 4
)

var ErrParse = errors.New("parse error")

// ParseError describes a line that does not match
// `Proc<N> <kind> <value> <counterpart>`.
type ParseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %q: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %q: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IsHalt reports whether line starts with the HALT sentinel.
func IsHalt(line string) bool {
	return strings.HasPrefix(line, HaltCommand)
}

// Parser validates process ids against a fixed process count.
type Parser struct {
	processes int
}

func NewParser(processes int) Parser {
	return Parser{processes: processes}
}

// Parse turns one command line into an Operation with 0-based ids.
func (p Parser) Parse(line string) (Operation, error) {
	raw := strings.TrimRight(line, "\r\n")
	fields := strings.Fields(raw)
	if len(fields) != fieldCount {
		return Operation{}, &ParseError{Line: raw, Reason: fmt.Sprintf("want %d fields, got %d", fieldCount, len(fields))}
	}

	name, ok := strings.CutPrefix(fields[0], procPrefix)
	if !ok {
		return Operation{}, &ParseError{Line: raw, Reason: fmt.Sprintf("process must be written as %s<N>", procPrefix)}
	}
	owner, err := p.processID(raw, "process", name)
	if err != nil {
		return Operation{}, err
	}

	kind, err := strconv.Atoi(fields[1])
	if err != nil {
		return Operation{}, &ParseError{Line: raw, Reason: "invalid kind", Err: err}
	}
	if Kind(kind) != Send && Kind(kind) != Recv {
		return Operation{}, &ParseError{Line: raw, Reason: fmt.Sprintf("kind must be 0 (SEND) or 1 (RECV), got %d", kind)}
	}

	payload, err := strconv.Atoi(fields[2])
	if err != nil {
		return Operation{}, &ParseError{Line: raw, Reason: "invalid value", Err: err}
	}

	peer, err := p.processID(raw, "counterpart", fields[3])
	if err != nil {
		return Operation{}, err
	}

	return Operation{
		Owner:   owner,
		Kind:    Kind(kind),
		Payload: payload,
		Peer:    peer,
	}, nil
}

// processID converts a 1-based id field into a 0-based index.
func (p Parser) processID(line, field, text string) (int, error) {
	id, err := strconv.Atoi(text)
	if err != nil {
		return 0, &ParseError{Line: line, Reason: "invalid " + field + " id", Err: err}
	}
	if id < 1 || id > p.processes {
		return 0, &ParseError{Line: line, Reason: fmt.Sprintf("%s id %d out of range [1, %d]", field, id, p.processes)}
	}
	return id - 1, nil
}
