package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jo-hoe/spectra/internal/core"
)

// HashPin handles the hash-pin subcommand and returns the process exit code.
// The PIN is read from the terminal without echo, or line by line when stdin is not a terminal.
func HashPin(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hash-pin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envLine := fs.Bool("env", false, "Print the hash as an ADMIN_SECRET line for a .env file")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: server hash-pin [OPTIONS]\n\n")
		fmt.Fprintf(stderr, "Prints an Argon2id hash of the admin PIN for use as adminSecret or ADMIN_SECRET.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	reader := newPinReader(stdin, stderr)
	pin, err := reader.read("Enter admin PIN:   ")
	if err != nil {
		fmt.Fprintf(stderr, "Error reading PIN: %v\n", err)
		return 1
	}
	if pin == "" {
		fmt.Fprintf(stderr, "PIN cannot be empty\n")
		return 1
	}
	confirm, err := reader.read("Confirm admin PIN: ")
	if err != nil {
		fmt.Fprintf(stderr, "Error reading PIN confirmation: %v\n", err)
		return 1
	}
	if pin != confirm {
		fmt.Fprintf(stderr, "PINs do not match\n")
		return 1
	}

	hash, err := core.HashPin(pin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *envLine {
		// single quotes keep godotenv from expanding the $ separators
		fmt.Fprintf(stdout, "ADMIN_SECRET='%s'\n", hash)
	} else {
		fmt.Fprintln(stdout, hash)
	}
	return 0
}

type pinReader struct {
	terminal int
	lines    *bufio.Reader
	prompts  io.Writer
}

func newPinReader(stdin io.Reader, prompts io.Writer) *pinReader {
	reader := &pinReader{terminal: -1, lines: bufio.NewReader(stdin), prompts: prompts}
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		reader.terminal = int(file.Fd())
	}
	return reader
}

func (r *pinReader) read(prompt string) (string, error) {
	fmt.Fprint(r.prompts, prompt)
	if r.terminal >= 0 {
		pin, err := term.ReadPassword(r.terminal)
		fmt.Fprintln(r.prompts)
		return string(pin), err
	}

	line, err := r.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
