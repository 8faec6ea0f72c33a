package indicator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/neuroscan/internal/config"
	"github.com/rbright/neuroscan/internal/screening"
)

func TestNotifierDispatchesAndReplacesNotification(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "busctl-args.log")
	t.Setenv("BUSCTL_ARGS_FILE", argsFile)
	installBusctlStub(t, `
printf '%s\n' "$*" >> "${BUSCTL_ARGS_FILE}"
if [[ "$*" == *" Notify "* ]]; then
  echo "u 42"
fi
`)

	cfg := config.Default().Indicator
	cfg.Enable = true
	cfg.SoundEnable = false
	cfg.ErrorTimeoutMS = 1600

	notify := NewNotifier(cfg, nil)
	notify.ShowRecording(context.Background())
	notify.ShowAnalyzing(context.Background(), screening.ModalityVoice)
	notify.ShowError(context.Background(), "")
	notify.Hide(context.Background())

	lines := readLines(t, argsFile)
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "Notify susssasa{sv}i neuroscan 0  Recording voice sample… neuroscan stop to analyze, neuroscan cancel to discard 0 2 urgency y 1 category s x-neuroscan.recording 300000")
	require.Contains(t, lines[1], "neuroscan 42  Analyzing voice… Voice sample sent for classification 0 2 urgency y 0 category s x-neuroscan.voice 300000")
	require.Contains(t, lines[2], "neuroscan 42  Screening error  0 2 urgency y 2 category s x-neuroscan.error 1600")
	require.Contains(t, lines[3], "CloseNotification u 42")
}

func TestNotifierShowErrorUsesProvidedTextAndDefaultTimeout(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "busctl-args.log")
	t.Setenv("BUSCTL_ARGS_FILE", argsFile)
	installBusctlStub(t, `
printf '%s\n' "$*" >> "${BUSCTL_ARGS_FILE}"
echo "u 7"
`)

	cfg := config.Default().Indicator
	cfg.Enable = true
	cfg.SoundEnable = false
	cfg.ErrorTimeoutMS = 0
	cfg.DesktopAppName = "screening"

	notify := NewNotifier(cfg, nil)
	notify.ShowError(context.Background(), "custom error")

	lines := readLines(t, argsFile)
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "screening 0  custom error  0 2 urgency y 2 category s x-neuroscan.error 1200")
}

func TestNotifierKeysAnalysisByModality(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "busctl-args.log")
	t.Setenv("BUSCTL_ARGS_FILE", argsFile)
	installBusctlStub(t, `
printf '%s\n' "$*" >> "${BUSCTL_ARGS_FILE}"
echo "u 9"
`)

	cfg := config.Default().Indicator
	cfg.Enable = true
	cfg.SoundEnable = false

	notify := NewNotifier(cfg, nil)
	notify.ShowAnalyzing(context.Background(), screening.ModalityHandwriting)
	notify.ShowAnalyzing(context.Background(), screening.ModalityVoice)

	lines := readLines(t, argsFile)
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "Analyzing spiral… Spiral drawing sent for classification")
	require.Contains(t, lines[0], "category s x-neuroscan.spiral")
	require.Contains(t, lines[1], "Analyzing voice… Voice sample sent for classification")
	require.Contains(t, lines[1], "category s x-neuroscan.voice")
}

func TestNotifierHideWithoutNotificationIsNoop(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "busctl-args.log")
	t.Setenv("BUSCTL_ARGS_FILE", argsFile)
	installBusctlStub(t, `
printf '%s\n' "$*" >> "${BUSCTL_ARGS_FILE}"
`)

	cfg := config.Default().Indicator
	cfg.Enable = true
	cfg.SoundEnable = false

	NewNotifier(cfg, nil).Hide(context.Background())
	_, err := os.Stat(argsFile)
	require.True(t, os.IsNotExist(err))
}

func TestNotifierDisabledSkipsDispatch(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "busctl-args.log")
	t.Setenv("BUSCTL_ARGS_FILE", argsFile)
	installBusctlStub(t, `
printf '%s\n' "$*" >> "${BUSCTL_ARGS_FILE}"
`)

	cfg := config.Default().Indicator
	cfg.Enable = false
	cfg.SoundEnable = false

	notify := NewNotifier(cfg, nil)
	notify.ShowRecording(context.Background())
	notify.ShowAnalyzing(context.Background(), screening.ModalityHandwriting)
	notify.ShowError(context.Background(), "ignored")
	notify.CueStop(context.Background())
	notify.CueComplete(context.Background())
	notify.CueCancel(context.Background())
	notify.Hide(context.Background())
	notify.Wait()

	_, err := os.Stat(argsFile)
	require.True(t, os.IsNotExist(err))
}

func TestDesktopNotifyRejectsInvalidResponse(t *testing.T) {
	installBusctlStub(t, `
echo "garbage"
`)

	_, err := desktopNotify(context.Background(), "neuroscan", 0, notification{summary: "hi", timeoutMS: 1000})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid response")
}

func TestDesktopNotifySurfacesCommandFailure(t *testing.T) {
	installBusctlStub(t, `
echo "bus unavailable" >&2
exit 1
`)

	_, err := desktopNotify(context.Background(), "neuroscan", 0, notification{summary: "hi", timeoutMS: 1000})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bus unavailable")

	err = desktopDismiss(context.Background(), 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "desktop dismiss failed")
}

func installBusctlStub(t *testing.T, body string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "busctl")
	script := "#!/usr/bin/env bash\nset -euo pipefail\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
