package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"erdiagram/internal/diagram"
)

// notifier prints store outcomes to stderr.
type notifier struct {
	w io.Writer
}

func (n notifier) Success(title, description string) {
	fmt.Fprintf(n.w, "%s: %s\n", title, description)
}

func (n notifier) Error(title, description string) {
	fmt.Fprintf(n.w, "error: %s: %s\n", title, description)
}

func (a *app) confirmer() diagram.Confirmer {
	if a.yes {
		return diagram.AlwaysConfirm
	}
	reader := bufio.NewReader(a.in)
	return diagram.ConfirmFunc(func(_ context.Context, prompt string) bool {
		fmt.Fprintf(a.errOut, "%s [y/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}
