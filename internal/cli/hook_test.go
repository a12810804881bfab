package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
)

func TestGenerateHookScript(t *testing.T) {
	script := generateHookScript("text", false)

	if !strings.Contains(script, hookMarkerStart) {
		t.Error("Script missing start marker")
	}
	if !strings.Contains(script, hookMarkerEnd) {
		t.Error("Script missing end marker")
	}
	if !strings.Contains(script, "commitleak scan staged --fail-on-findings --format text\n") {
		t.Error("Script missing commitleak command with correct flags")
	}
	if !strings.Contains(script, "COMMITLEAK_EXIT=$?") {
		t.Error("Script missing exit code capture")
	}
	if !strings.Contains(script, "exit 1") {
		t.Error("Script missing exit 1 for findings")
	}
	if !strings.Contains(script, "allowing commit") {
		t.Error("Script missing warning for errors")
	}
}

func TestGenerateHookScript_CustomFlags(t *testing.T) {
	script := generateHookScript("json", true)

	if !strings.Contains(script, "--format json") {
		t.Error("Script doesn't use custom format")
	}
	if !strings.Contains(script, "--include-tests") {
		t.Error("Script doesn't pass include-tests")
	}
}

func TestReplaceHookSection_NoExisting(t *testing.T) {
	existing := "#!/bin/sh\nsome-other-hook\n"
	section := generateHookScript("text", false)

	result := replaceHookSection(existing, section)

	if !strings.HasPrefix(result, "#!/bin/sh\nsome-other-hook\n") {
		t.Error("Existing content should be preserved")
	}
	if !strings.HasSuffix(result, section) {
		t.Error("New section should be appended")
	}
}

func TestReplaceHookSection_ExistingSection(t *testing.T) {
	oldSection := generateHookScript("text", false)
	existing := "#!/bin/sh\nbefore\n" + oldSection + "after\n"
	newSection := generateHookScript("json", true)

	result := replaceHookSection(existing, newSection)

	if !strings.Contains(result, "before") {
		t.Error("Content before hook section should be preserved")
	}
	if !strings.Contains(result, "after") {
		t.Error("Content after hook section should be preserved")
	}
	if !strings.Contains(result, "--format json") {
		t.Error("New section should have updated flags")
	}
	if strings.Contains(result, "--format text") {
		t.Error("Old section should be replaced")
	}
	if strings.Count(result, hookMarkerStart) != 1 {
		t.Error("Exactly one hook section expected")
	}
}

func TestRemoveHookSection(t *testing.T) {
	section := generateHookScript("text", false)
	existing := "#!/bin/sh\nbefore\n" + section + "after\n"

	result := removeHookSection(existing)

	if result != "#!/bin/sh\nbefore\nafter\n" {
		t.Errorf("removeHookSection = %q", result)
	}
}

func TestRemoveHookSection_NoSection(t *testing.T) {
	existing := "#!/bin/sh\nsome-hook\n"
	result := removeHookSection(existing)
	if result != existing {
		t.Error("Content without hook section should be unchanged")
	}
}

func TestReplaceHookSection_NoTrailingNewline(t *testing.T) {
	existing := "#!/bin/sh\nsome-hook"
	section := generateHookScript("text", false)

	result := replaceHookSection(existing, section)

	if !strings.HasPrefix(result, "#!/bin/sh\nsome-hook\n"+hookMarkerStart) {
		t.Errorf("Section should start on its own line, got %q", result)
	}
}

func TestHookInstallUninstall(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	hookPath := filepath.Join(dir, ".git", "hooks", "pre-commit")

	hookCmd.SetArgs([]string{"install", "--format", "text"})
	if err := hookCmd.Execute(); err != nil {
		t.Fatalf("hook install returned error: %v", err)
	}
	data, err := os.ReadFile(hookPath)
	if err != nil {
		t.Fatalf("hook file not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "#!/bin/sh\n"+hookMarkerStart) {
		t.Errorf("unexpected hook content %q", data)
	}

	hookCmd.SetArgs([]string{"uninstall"})
	if err := hookCmd.Execute(); err != nil {
		t.Fatalf("hook uninstall returned error: %v", err)
	}
	if _, err := os.Stat(hookPath); !os.IsNotExist(err) {
		t.Error("hook file holding only our section should be removed")
	}
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
}
