package report

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/reflow/wordwrap"

	"lemoncello/model"
	"lemoncello/timer"
)

type rendererKey struct {
	width int
	color bool
}

var (
	rendererMu sync.Mutex
	renderers  = map[rendererKey]*glamour.TermRenderer{}
)

// Markdown renders a day summary as a markdown document.
func Markdown(day Day) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Heading(day.Date))
	if day.Empty() {
		b.WriteString("No sessions logged.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "**Total:** %s across %s (%d completed, %d stopped)\n",
		minutes(day.TotalWorkMinutes), plural(len(day.Sessions), "session"), day.Completed, day.Stopped)

	for _, group := range day.Tasks {
		fmt.Fprintf(&b, "\n## %s · %s\n\n", group.TaskName, minutes(group.TotalWorkMinutes))
		writeSessionList(&b, group.Sessions)
	}
	if len(day.Taskless) > 0 {
		b.WriteString("\n## Without a task\n\n")
		writeSessionList(&b, day.Taskless)
	}
	return b.String()
}

func writeSessionList(b *strings.Builder, sessions []model.Session) {
	for _, s := range sessions {
		fmt.Fprintf(b, "- %s **%s** · %s · %s\n", span(s), s.BlockName, minutes(s.TotalWorkMinutes), Status(s))
		if desc := strings.TrimSpace(s.WorkDescription); desc != "" {
			fmt.Fprintf(b, "  %s\n", strings.ReplaceAll(desc, "\n", " "))
		}
	}
}

// Render formats a day summary for the terminal. Without color the ASCII style is used.
// Rendering failures fall back to the raw markdown.
func Render(day Day, width int, color bool) string {
	if width < 20 {
		width = 20
	}
	source := Markdown(day)
	renderer := markdownRenderer(width, color)
	if renderer == nil {
		return source
	}
	out, err := renderer.Render(source)
	if err != nil {
		return source
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// Plain formats a day summary as wrapped plain text for narrow views.
func Plain(day Day, width int) string {
	if width < 20 {
		width = 20
	}
	var b strings.Builder
	b.WriteString(Heading(day.Date) + "\n")
	if day.Empty() {
		b.WriteString("No sessions logged.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Total %s · %d completed · %d stopped\n", minutes(day.TotalWorkMinutes), day.Completed, day.Stopped)

	write := func(title string, sessions []model.Session) {
		b.WriteString("\n" + title + "\n")
		for _, s := range sessions {
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n", span(s), s.BlockName, minutes(s.TotalWorkMinutes), Status(s))
			if desc := strings.TrimSpace(s.WorkDescription); desc != "" {
				for _, line := range strings.Split(wordwrap.String(desc, width-4), "\n") {
					b.WriteString("    " + line + "\n")
				}
			}
		}
	}
	for _, group := range day.Tasks {
		write(group.TaskName, group.Sessions)
	}
	if len(day.Taskless) > 0 {
		write("Without a task", day.Taskless)
	}
	return b.String()
}

func markdownRenderer(width int, color bool) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	key := rendererKey{width: width, color: color}
	if cached, ok := renderers[key]; ok {
		return cached
	}

	var style ansi.StyleConfig
	if color {
		style = styles.DarkStyleConfig
	} else {
		style = styles.ASCIIStyleConfig
		style.Item.BlockPrefix = "- "
	}
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[key] = created
	return created
}

func span(s model.Session) string {
	return s.StartTime.Local().Format("15:04") + "-" + s.EndTime.Local().Format("15:04")
}

func minutes(m int) string {
	return timer.FormatElapsed(time.Duration(m) * time.Minute)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
