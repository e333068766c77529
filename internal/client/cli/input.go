package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	return readLine(reader)
}

// GetWithDefault prompts with the current value in brackets. An empty answer
// keeps current; a single "-" clears the field.
func GetWithDefault(reader *bufio.Reader, prompt, current string, w io.Writer) (string, error) {
	if _, err := fmt.Fprintf(w, "%s [%s]: ", prompt, current); err != nil {
		return "", err
	}
	line, err := readLine(reader)
	if err != nil {
		return "", err
	}
	switch line {
	case "":
		return current, nil
	case "-":
		return "", nil
	default:
		return line, nil
	}
}

// Confirm asks a yes/no question; only "y" or "yes" count as yes.
func Confirm(reader *bufio.Reader, question string, w io.Writer) (bool, error) {
	if _, err := fmt.Fprint(w, question+" (y/N): "); err != nil {
		return false, err
	}
	line, err := readLine(reader)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a password prompt to w and reads a password
// from the user's terminal without echo. A newline is printed after
// the read to keep the UI tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
