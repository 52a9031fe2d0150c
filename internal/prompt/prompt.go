// Package prompt reads validated numbers from the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
)

const (
	logMsgInvalidInput = "invalid user input"
	logMsgReadFailed   = "reading user input failed"
	logAttrInput       = "input"
	logAttrError       = "error"

	// InvalidInputMessage is printed after every rejected line.
	InvalidInputMessage = "Invalid input. Please enter a positive integer:"
)

// ErrNoInput is returned when the input ends before a positive integer was read.
var ErrNoInput = errors.New("no valid input before end of input")

// PositiveInt reads lines from in until one holds a positive integer and returns it.
// Every rejected line is logged to log (if not nil) and answered with InvalidInputMessage on out.
func PositiveInt(in *bufio.Reader, out io.Writer, log ledger.Logger) (int, error) {
	for {
		line, readErr := in.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			if log != nil {
				log.Error(logMsgReadFailed, logAttrError, readErr.Error())
			}

			return 0, fmt.Errorf("reading user input: %w", readErr)
		}

		input := strings.TrimSpace(line)

		if value, err := strconv.Atoi(input); err == nil && value > 0 {
			return value, nil
		}

		if readErr != nil {
			return 0, ErrNoInput
		}

		if log != nil {
			log.Info(logMsgInvalidInput, logAttrInput, input)
		}

		pterm.Fprintln(out, pterm.Warning.Sprint(InvalidInputMessage))
	}
}

// Ask prints question on out and then reads a positive integer like PositiveInt.
func Ask(in *bufio.Reader, out io.Writer, log ledger.Logger, question string) (int, error) {
	pterm.Fprintln(out, pterm.Info.Sprint(question))

	return PositiveInt(in, out, log)
}
