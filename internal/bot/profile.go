package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/view"
)

const chartWidth = 12

func (b *Bot) showProfile(ctx context.Context, chatID int64) error {
	ws := b.workspace(chatID)
	if ws == nil {
		return b.sendNoSession(chatID)
	}
	if ws.mirror.Loading() {
		return b.sendText(chatID, "⏳ Memuat...")
	}

	email := ""
	if b.users != nil {
		if user, err := b.users.FindByID(ctx, ws.ownerID); err == nil {
			email = user.Email
		} else {
			b.log.Warnw("load profile", "user_id", ws.ownerID, "error", err)
		}
	}
	text := renderProfile(email, ws.mirror.Tasks.Snapshot(), b.now().In(b.loc))
	return b.sendScreen(chatID, text, logoutKeyboard())
}

// renderProfile shows this week's counts and the completed-per-week chart.
func renderProfile(email string, tasks []model.Task, now time.Time) string {
	stats := view.WeeklyStats(tasks, now)
	series := view.WeeklySeries(tasks, now)

	var sb strings.Builder
	if email != "" {
		sb.WriteString(fmt.Sprintf("👤 %s\n\n", escape(email)))
	}
	sb.WriteString("<b>Tugas 1 Minggu Terakhir</b>\n")
	sb.WriteString(fmt.Sprintf("✅ Tugas Selesai: <b>%d</b>\n", stats.Done))
	sb.WriteString(fmt.Sprintf("⏳ Belum Selesai: <b>%d</b>\n\n", stats.Incomplete))
	sb.WriteString("<b>Grafik Tugas Selesai per Minggu</b>\n")
	sb.WriteString("<pre>" + escape(renderChart(series)) + "</pre>")
	return sb.String()
}

// renderChart draws one bar per week. A collapsed series has a single zero
// point and draws as one empty line.
func renderChart(series view.Series) string {
	if len(series.Data) != len(series.Labels) {
		return "(belum ada tugas selesai) 0"
	}

	top, labelWidth := 0, 0
	for i, v := range series.Data {
		if v > top {
			top = v
		}
		if n := len([]rune(series.Labels[i])); n > labelWidth {
			labelWidth = n
		}
	}

	lines := make([]string, 0, len(series.Data))
	for i, v := range series.Data {
		bar := 0
		if top > 0 {
			bar = v * chartWidth / top
		}
		if v > 0 && bar == 0 {
			bar = 1
		}
		label := series.Labels[i] + strings.Repeat(" ", labelWidth-len([]rune(series.Labels[i])))
		lines = append(lines, fmt.Sprintf("%s │%s %d", label, strings.Repeat("█", bar), v))
	}
	return strings.Join(lines, "\n")
}
