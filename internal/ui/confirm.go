package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter reads answers from In and writes questions to Out.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	r *bufio.Reader
}

// Std prompts on the terminal.
var Std = &Prompter{In: os.Stdin, Out: os.Stdout}

func (p *Prompter) line() string {
	if p.r == nil {
		p.r = bufio.NewReader(p.In)
	}
	line, _ := p.r.ReadString('\n')
	return strings.TrimSpace(line)
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", StyleWarning.Render(prompt))
	ans := strings.ToLower(p.line())
	return ans == "y" || ans == "yes"
}

// ConfirmDanger is Confirm in the error color, for irreversible actions.
func (p *Prompter) ConfirmDanger(prompt string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	ans := strings.ToLower(p.line())
	return ans == "y" || ans == "yes"
}

// PromptInput asks for a line of text, returning def when the answer is empty.
func (p *Prompter) PromptInput(prompt, def string) string {
	if def != "" {
		fmt.Fprintf(p.Out, "%s %s: ", StyleAccent.Render(prompt), StyleMeta.Render("("+def+")"))
	} else {
		fmt.Fprintf(p.Out, "%s: ", StyleAccent.Render(prompt))
	}
	if ans := p.line(); ans != "" {
		return ans
	}
	return def
}

// Confirm asks on the terminal.
func Confirm(prompt string) bool { return Std.Confirm(prompt) }

// ConfirmDanger asks on the terminal.
func ConfirmDanger(prompt string) bool { return Std.ConfirmDanger(prompt) }

// PromptInput asks on the terminal.
func PromptInput(prompt, def string) string { return Std.PromptInput(prompt, def) }
