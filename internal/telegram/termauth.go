package telegram

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// TerminalPrompt returns a code prompt that writes to out and reads one line
// from in.
func TerminalPrompt(in io.Reader, out io.Writer) func(ctx context.Context) (string, error) {
	reader := bufio.NewReader(in)
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(out, "Enter the code Telegram sent you: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read code: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
}
