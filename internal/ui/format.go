package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kodestorel007/fun-kanban/internal/api"
)

// RelTime renders a timestamp the way the cards do: "Just now", minutes,
// hours, days, then a short date.
func RelTime(t time.Time) string {
	if t.IsZero() {
		return "Just now"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// Initials derives the avatar initials from a display name.
func Initials(name string) string {
	if name == "" {
		return "?"
	}
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(string([]rune(part)[0])))
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

// NotificationGroups is the inbox bucketed by day for display.
type NotificationGroups struct {
	Today     []api.Notification
	Yesterday []api.Notification
	ThisWeek  []api.Notification
	Older     []api.Notification
}

// GroupNotifications buckets notifications by age relative to now.
func GroupNotifications(ns []api.Notification, now time.Time) NotificationGroups {
	var g NotificationGroups
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	weekAgo := now.Add(-7 * 24 * time.Hour)

	for _, n := range ns {
		day := n.CreatedAt.Format("2006-01-02")
		switch {
		case day == today:
			g.Today = append(g.Today, n)
		case day == yesterday:
			g.Yesterday = append(g.Yesterday, n)
		case n.CreatedAt.After(weekAgo):
			g.ThisWeek = append(g.ThisWeek, n)
		default:
			g.Older = append(g.Older, n)
		}
	}
	return g
}

// NotificationIcon maps a notification type to its glyph.
func NotificationIcon(typ string) string {
	switch typ {
	case "member_joined", "member_left":
		return "👋"
	case "task_moved":
		return "📦"
	case "task_update", "task_update_reply":
		return "💬"
	default:
		return "🔔"
	}
}
