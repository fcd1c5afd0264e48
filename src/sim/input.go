package sim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

func isInteractiveInput(r *os.File) bool {
	info, err := r.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// isInteractiveReader treats anything other than a non-terminal *os.File as
// interactive, matching what a user typing into a wrapped reader expects.
func isInteractiveReader(input io.Reader) bool {
	file, ok := input.(*os.File)
	if !ok {
		return true
	}
	return isInteractiveInput(file)
}

func getBufferedReader(input io.Reader) *bufio.Reader {
	if reader, ok := input.(*bufio.Reader); ok {
		return reader
	}
	return bufio.NewReader(input)
}

func (s *Simulation) shouldPrompt(input io.Reader) bool {
	switch s.cfg.Prompt {
	case PromptNever:
		return false
	case PromptAuto:
		return isInteractiveReader(input)
	default:
		return true
	}
}

// Run reads commands from input until HALT or end of input, then halts.
func (s *Simulation) Run(input io.Reader) error {
	reader := getBufferedReader(input)
	prompt := s.shouldPrompt(input)

	for s.state == Running {
		if prompt {
			s.printf("%s", s.cfg.PromptText)
		}

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read command: %w", err)
		}
		if line != "" {
			if stepErr := s.Step(line); stepErr != nil {
				return stepErr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	return s.Halt("")
}
