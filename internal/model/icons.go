package model

// Centralized status labels for the report and TUI
const (
	IconClean = "✅"  // No secrets
	IconAlert = "❗"  // Secrets found
	IconError = "⚠️" // Unreadable, not the same as clean
	IconFile  = "📄"
	IconScan  = "🔍"
	IconWatch = "🔄"
)

// StatusLabel returns the icon-prefixed display label for a status.
func StatusLabel(s Status) string {
	switch s {
	case StatusAlert:
		return IconAlert + " Alert"
	case StatusError:
		return IconError + " Error"
	default:
		return IconClean + " Clean"
	}
}
