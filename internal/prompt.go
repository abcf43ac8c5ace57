package internal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Prompter asks for the two folder paths when they were not given.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints label and returns the trimmed answer. Surrounding quotes are
// dropped because drag-and-drop into a terminal often adds them.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "  ⌨️ %s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return cleanInput(line), nil
}

// AskPaths prompts for whichever of source and destination is still empty.
func (p *Prompter) AskPaths(source, destination string) (string, string, error) {
	var err error
	if source == "" || destination == "" {
		fmt.Fprintln(p.out, "📁 Please provide the folder paths:")
	}
	if source == "" {
		if source, err = p.Ask("Enter the source folder path"); err != nil {
			return "", "", err
		}
	}
	if destination == "" {
		if destination, err = p.Ask("Enter the destination folder path"); err != nil {
			return "", "", err
		}
	}
	return source, destination, nil
}

func cleanInput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `'"`)
	return strings.TrimSpace(s)
}

// ResolvePath expands a leading ~ and makes p absolute.
func ResolvePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty path")
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand ~: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", p, err)
	}
	return abs, nil
}
