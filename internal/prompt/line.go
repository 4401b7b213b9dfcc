package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/alnah/go-jenkins/internal/recovery"
)

// maxChoiceAttempts bounds how often an invalid action choice is re-asked
// before the prompt falls back to the cancel action.
const maxChoiceAttempts = 3

var (
	lineTitle   = color.New(color.FgRed, color.Bold)
	lineMessage = color.New(color.FgWhite)
	lineHint    = color.New(color.Faint)
)

// LineHost prompts on plain lines of text.
// Secret fields are read without echo when the input is a terminal.
type LineHost struct {
	form

	in       *bufio.Reader
	out      io.Writer
	secretFd int // -1 unless in is a terminal
}

// NewLineHost creates a LineHost reading from in and writing to out.
func NewLineHost(in io.Reader, out io.Writer) *LineHost {
	h := &LineHost{
		in:       bufio.NewReader(in),
		out:      out,
		secretFd: -1,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		h.secretFd = int(f.Fd())
	}
	return h
}

// Show prints the prompt, reads every field and then the action choice.
// End of input at any point activates the cancel action.
func (h *LineHost) Show(ctx context.Context, title, message string) error {
	if err := h.begin(); err != nil {
		return err
	}

	_, _ = lineTitle.Fprintln(h.out, title)
	_, _ = lineMessage.Fprintln(h.out, message)

	values := make(map[string]string, len(h.fields))
	for _, f := range h.fields {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := h.readField(f)
		if errors.Is(err, io.EOF) {
			h.fire(h.cancelIndex(), values)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Key, err)
		}
		values[f.Key] = v
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	idx, err := h.readChoice()
	if errors.Is(err, io.EOF) {
		idx = h.cancelIndex()
	} else if err != nil {
		return fmt.Errorf("read choice: %w", err)
	}
	h.fire(idx, values)
	return nil
}

func (h *LineHost) fire(idx int, values map[string]string) {
	h.actions[idx].Handler(values)
}

// readField reads one field value.
func (h *LineHost) readField(f recovery.Field) (string, error) {
	_, _ = fmt.Fprintf(h.out, "%s: ", f.Placeholder)
	if f.Secret && h.secretFd >= 0 {
		b, err := term.ReadPassword(h.secretFd)
		_, _ = fmt.Fprintln(h.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return h.readLine()
}

// readChoice reads the action to activate.
// A single action only needs Enter. With several, an empty line picks the
// default action; otherwise a number or a label (case-insensitive) is expected.
func (h *LineHost) readChoice() (int, error) {
	if len(h.actions) == 1 {
		_, _ = lineHint.Fprintf(h.out, "[%s] press Enter\n", h.actions[0].Label)
		_, err := h.readLine()
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, err
	}

	def := h.defaultIndex()
	labels := make([]string, len(h.actions))
	for i, a := range h.actions {
		labels[i] = fmt.Sprintf("%d) %s", i+1, a.Label)
		if i == def {
			labels[i] += " (default)"
		}
	}

	for range maxChoiceAttempts {
		_, _ = lineHint.Fprintf(h.out, "%s: ", strings.Join(labels, "  "))
		line, err := h.readLine()
		if err != nil {
			return 0, err
		}
		if idx, ok := h.match(line, def); ok {
			return idx, nil
		}
		_, _ = fmt.Fprintf(h.out, "Unknown choice %q\n", line)
	}
	return h.cancelIndex(), nil
}

// match resolves a typed choice to an action index.
func (h *LineHost) match(line string, def int) (int, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return def, true
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(h.actions) {
		return n - 1, true
	}
	for i, a := range h.actions {
		if strings.EqualFold(a.Label, line) {
			return i, true
		}
	}
	return 0, false
}

// readLine reads a line without its terminator.
// A final line without newline is returned; io.EOF is reported only when
// nothing was read.
func (h *LineHost) readLine() (string, error) {
	line, err := h.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Compile-time interface verification.
var _ recovery.Host = (*LineHost)(nil)
