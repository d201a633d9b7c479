package cli

import (
	"context"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/monorail/pkg/errors"
)

// confirmModel is a yes/no prompt. Enter accepts the highlighted choice;
// y and n answer directly.
type confirmModel struct {
	prompt   string
	yes      bool // highlighted choice
	answered bool
}

func newConfirmModel(prompt string) confirmModel {
	return confirmModel{prompt: prompt}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.yes, m.answered = true, true
		return m, tea.Quit
	case "n", "N", "q", "esc", "ctrl+c":
		m.yes, m.answered = false, true
		return m, tea.Quit
	case "left", "right", "h", "l", "tab":
		m.yes = !m.yes
	case "enter":
		m.answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.answered {
		return ""
	}
	yes, no := StyleDim.Render(" yes "), StyleDim.Render(" no ")
	if m.yes {
		yes = StyleTitle.Render("[yes]")
	} else {
		no = StyleTitle.Render("[no]")
	}
	var b strings.Builder
	b.WriteString(styleIconWarning.Render(iconWarning) + " " + m.prompt + "  " + yes + " " + no + "\n")
	b.WriteString(StyleDim.Render("  y/n answer  ←/→ choose  ⏎ confirm") + "\n")
	return b.String()
}

// confirm asks prompt interactively. skip (the --yes flag) answers yes
// without asking. Without a terminal the prompt cannot be shown and the
// caller must pass --yes.
func confirm(ctx context.Context, prompt string, skip bool) (bool, error) {
	if skip {
		return true, nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false, errors.New(errors.ErrCodeInvalidInput, "cannot ask for confirmation without a terminal; pass --yes")
	}
	final, err := tea.NewProgram(newConfirmModel(prompt), tea.WithContext(ctx)).Run()
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, err
	}
	m := final.(confirmModel)
	return m.answered && m.yes, nil
}
