package safety

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thepostgresguy/pgtools-sub000/pkg/internal/utils"
	"github.com/thepostgresguy/pgtools-sub000/pkg/plan"
)

// TerminalConfirm prompts per operation and accepts y or yes
func TerminalConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(op *plan.Operation) bool {
		fmt.Fprintf(out, "%s %s (%s)? [y/N] ",
			op.Kind.Verb(), op.Target.Name(), utils.HumanBytes(op.Target.SizeBytes))
		answer, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}

// Interactive reports whether stdin is attached to a terminal. When it
// is not, destructive operations need standing approval instead of a
// prompt.
func Interactive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
