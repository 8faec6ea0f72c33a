package indicator

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rbright/neuroscan/internal/screening"
)

// Freedesktop urgency levels.
type urgency byte

const (
	urgencyLow urgency = iota
	urgencyNormal
	urgencyCritical
)

// Notification categories use the x-vendor prefix for non-standard classes.
const (
	categoryRecording = "x-neuroscan.recording"
	categorySpiral    = "x-neuroscan.spiral"
	categoryVoice     = "x-neuroscan.voice"
	categoryError     = "x-neuroscan.error"
)

// notification is one replaceable desktop message.
type notification struct {
	summary   string
	body      string
	category  string
	urgency   urgency
	timeoutMS int
}

func analysisCategory(modality screening.Modality) string {
	if modality == screening.ModalityVoice {
		return categoryVoice
	}
	return categorySpiral
}

// desktopNotify sends n through org.freedesktop.Notifications, replacing
// replaceID when non-zero, and returns the server-assigned ID.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, n notification) (uint32, error) {
	out, err := busctl(ctx, "Notify", "susssasa{sv}i",
		appName,
		strconv.FormatUint(uint64(replaceID), 10),
		"", // icon
		n.summary,
		n.body,
		"0", // actions
		"2", "urgency", "y", strconv.Itoa(int(n.urgency)),
		"category", "s", n.category,
		strconv.Itoa(n.timeoutMS),
	)
	if err != nil {
		return 0, fmt.Errorf("desktop notify failed: %w", err)
	}

	// busctl prints the reply as "u <id>".
	typ, value, ok := strings.Cut(out, " ")
	if !ok || typ != "u" {
		return 0, fmt.Errorf("desktop notify invalid response: %q", out)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("desktop notify parse id %q: %w", value, err)
	}
	return uint32(id), nil
}

// desktopDismiss closes notification id.
func desktopDismiss(ctx context.Context, id uint32) error {
	if _, err := busctl(ctx, "CloseNotification", "u", strconv.FormatUint(uint64(id), 10)); err != nil {
		return fmt.Errorf("desktop dismiss failed: %w", err)
	}
	return nil
}

// busctl calls method on the user-session notification service and returns trimmed output.
func busctl(ctx context.Context, method, signature string, args ...string) (string, error) {
	argv := append([]string{
		"--user",
		"call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		method,
		signature,
	}, args...)

	raw, err := exec.CommandContext(ctx, "busctl", argv...).CombinedOutput()
	out := strings.TrimSpace(string(raw))
	if err != nil {
		if out == "" {
			return "", err
		}
		return "", fmt.Errorf("%w (%s)", err, out)
	}
	return out, nil
}
