package commands

import (
	"fmt"
	"io"

	"github.com/colonyops/fleetcheck/internal/core/styles"
)

// printer writes styled status lines for human-oriented commands.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer { return printer{w: w} }

func (p printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p printer) Successf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.SuccessStyle.Render("✔ "+fmt.Sprintf(format, args...)))
}

func (p printer) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.WarningStyle.Render("! "+fmt.Sprintf(format, args...)))
}

func (p printer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.ErrorStyle.Render("✘ "+fmt.Sprintf(format, args...)))
}

func (p printer) Mutedf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.MutedStyle.Render(fmt.Sprintf(format, args...)))
}
