package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StatusKind indicates severity for toasts.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

type toast struct {
	title string
	msg   string
	kind  StatusKind
	dur   time.Duration
	end   time.Time // zero until the toast reaches the front
}

// toastQueue shows one toast at a time. The front toast's timer starts when
// it becomes visible and it is dropped on the first tick after it expires.
type toastQueue struct {
	items []toast
	now   func() time.Time
}

func newToastQueue() toastQueue {
	return toastQueue{now: time.Now}
}

func (q *toastQueue) push(kind StatusKind, title, msg string, dur time.Duration) {
	q.items = append(q.items, toast{title: title, msg: msg, kind: kind, dur: dur})
	q.startFront()
}

func (q *toastQueue) startFront() {
	if len(q.items) > 0 && q.items[0].end.IsZero() {
		q.items[0].end = q.now().Add(q.items[0].dur)
	}
}

// expire drops the front toast if its time has passed.
func (q *toastQueue) expire(at time.Time) {
	if len(q.items) == 0 {
		return
	}
	if !q.items[0].end.IsZero() && at.After(q.items[0].end) {
		q.items = q.items[1:]
		q.startFront()
	}
}

func (q *toastQueue) front() (toast, bool) {
	if len(q.items) == 0 {
		return toast{}, false
	}
	return q.items[0], true
}

func (q *toastQueue) len() int {
	return len(q.items)
}

func (t toast) style() lipgloss.Style {
	switch t.kind {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

func (t toast) borderColor() lipgloss.Color {
	switch t.kind {
	case StatusSuccess:
		return SuccessColor
	case StatusWarn:
		return WarnColor
	case StatusError:
		return ErrorColor
	default:
		return MutedColor
	}
}

func (t toast) render(width int) string {
	boxWidth := width / 3
	if boxWidth < 30 {
		boxWidth = min(30, width)
	}

	rows := []string{}
	if t.title != "" {
		rows = append(rows, t.style().Render(truncateEnd(t.title, boxWidth-4)))
	}
	rows = append(rows, lipgloss.NewStyle().Foreground(TextColor).Width(boxWidth-4).Render(t.msg))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.borderColor()).
		Padding(0, 1).
		Width(boxWidth - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	return lipgloss.PlaceHorizontal(width, lipgloss.Right, box)
}
