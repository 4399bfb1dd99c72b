package logger

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func reset() {
	SetLevel("warn")
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	if got := buf.String(); got != "[DEBUG] test message arg\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")

	if buf.Len() > 0 {
		t.Error("expected no output when verbose is disabled")
	}
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Test Section")

	if got := buf.String(); got != "\n=== Test Section ===\n" {
		t.Errorf("unexpected section output: %q", got)
	}
}

func TestInfo(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("info message %d", 42)

	if got := buf.String(); got != "[INFO] info message 42\n" {
		t.Errorf("unexpected info output: %q", got)
	}
}

func TestInfo_HiddenAtDefaultLevel(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("quiet")

	if buf.Len() > 0 {
		t.Errorf("expected no info output at warn level, got %q", buf.String())
	}
}

func TestWarn_AlwaysWritten(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("warning message")

	if got := buf.String(); got != "[WARN] warning message\n" {
		t.Errorf("unexpected warn output: %q", got)
	}
}

func TestSetLevel_Error(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("error")

	Warn("dropped")
	Error("kept %s", "this")

	if got := buf.String(); got != "[ERROR] kept this\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSetLevel_DebugEnablesVerbose(t *testing.T) {
	defer reset()

	SetLevel("DEBUG")
	if !IsVerbose() {
		t.Error("expected debug level to enable verbose mode")
	}
}

func TestSetLevel_NonDebugClearsVerbose(t *testing.T) {
	defer reset()

	SetLevel("debug")
	SetLevel("info")
	if IsVerbose() {
		t.Error("expected info level to turn verbose mode off")
	}
}

func TestSetLevel_KeepsRequestedVerbose(t *testing.T) {
	defer reset()

	SetVerbose(true)
	SetLevel("error")
	if !IsVerbose() {
		t.Error("expected --verbose to survive a level change")
	}
}

func TestDocument_Failure(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Document("specs/a.pdf", "embed", errors.New("boom"))

	got := buf.String()
	if !strings.HasPrefix(got, "[WARN] document failed") {
		t.Errorf("unexpected output: %q", got)
	}
	if !strings.Contains(got, "doc=specs/a.pdf") || !strings.Contains(got, "event=embed") {
		t.Errorf("missing fields in %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	SetOutput(io.Discard)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
