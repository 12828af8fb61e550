package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/taskmaster/internal/views"
)

func (m Model) renderHelpView() string {
	return views.RenderHelpPanel(views.HelpPanelData{
		Markdown: m.helpMarkdown(),
		HelpView: m.helpModel.View(m.Keys),
	})
}

func (m Model) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("## Keys\n\n")
	for _, group := range m.Keys.FullHelp() {
		for _, binding := range group {
			writeBinding(&b, binding)
		}
	}
	b.WriteString("\n## Commands\n\n")
	b.WriteString("- `add <text> [due:<when>]`\n")
	b.WriteString("- `toggle [id]`, `delete [id]`, `priority <high|medium|low> [id]`\n")
	b.WriteString("- `clear`, `show <view>`, `sort <created|due|priority|manual>`\n")
	b.WriteString("\n`<when>`: today, tomorrow, yesterday, 2026-02-10, 2026-02-10 17:00\n")
	return b.String()
}

func writeBinding(b *strings.Builder, binding key.Binding) {
	h := binding.Help()
	b.WriteString(fmt.Sprintf("- `%s` %s\n", h.Key, h.Desc))
}
