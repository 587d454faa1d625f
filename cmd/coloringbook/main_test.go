package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// writeCLIConfig writes a mock config whose sqlite history lives in dir
func writeCLIConfig(t *testing.T, dir string) string {
	t.Helper()
	configFile := filepath.Join(dir, "config.yaml")
	content := "database:\n  connectionString: \"file:" + filepath.ToSlash(filepath.Join(dir, "history.db")) + "\"\n" +
		"generator:\n  provider: mock\n  mockImageSize: 16\n"
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return configFile
}

// historyIDs returns the ids listed by "history list", newest first
func historyIDs(t *testing.T, configFile string) []string {
	t.Helper()
	out, err := runCLI(t, "history", "list", "--config", configFile)
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("history list output has no header: %q", out)
	}
	var ids []string
	for _, line := range lines[1:] {
		if fields := strings.Fields(line); len(fields) > 0 {
			ids = append(ids, fields[0])
		}
	}
	return ids
}

func generateOnce(t *testing.T, configFile, prompt string) {
	t.Helper()
	outDir := filepath.Join(filepath.Dir(configFile), "out")
	if _, err := runCLI(t, "generate", "--config", configFile, "--mode", "coloring", "--count", "1", "--out", outDir, prompt); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	configFile := writeCLIConfig(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := runCLI(t, "generate", "--config", configFile, "--mode", "both", "--count", "2", "--out", outDir, "a", "cat")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 files, got %d", len(entries))
	}
	for _, want := range []string{"01-a-cat-original.png", "02-a-cat-coloring.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not list %s", out, want)
		}
	}
}

func TestGenerateCommand_RequiresPrompt(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	generateFile = ""
	if _, err := runCLI(t, "generate", "--config", configFile); err == nil {
		t.Fatal("expected error without prompt")
	}
}

func TestHistoryCommands(t *testing.T) {
	configFile := writeCLIConfig(t, t.TempDir())

	generateOnce(t, configFile, "a cat")
	generateOnce(t, configFile, "a dog")

	ids := historyIDs(t, configFile)
	if len(ids) != 2 {
		t.Fatalf("expected 2 history items across invocations, got %v", ids)
	}

	out, err := runCLI(t, "history", "show", "--config", configFile, ids[0])
	if err != nil {
		t.Fatalf("history show failed: %v", err)
	}
	if !strings.Contains(out, `"prompt": "a dog"`) || !strings.Contains(out, `"mode": "coloring"`) {
		t.Errorf("history show should print the newest item, got %q", out)
	}

	if _, err := runCLI(t, "history", "delete", "--config", configFile, ids[0]); err != nil {
		t.Fatalf("history delete failed: %v", err)
	}
	if remaining := historyIDs(t, configFile); len(remaining) != 1 || remaining[0] != ids[1] {
		t.Errorf("after delete expected [%s], got %v", ids[1], remaining)
	}

	if _, err := runCLI(t, "history", "clear", "--config", configFile); err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	if remaining := historyIDs(t, configFile); len(remaining) != 0 {
		t.Errorf("after clear expected no items, got %v", remaining)
	}
}

func TestHistoryCommands_UnknownID(t *testing.T) {
	configFile := writeCLIConfig(t, t.TempDir())
	if _, err := runCLI(t, "history", "show", "--config", configFile, "missing"); err == nil {
		t.Error("expected error for unknown id on show")
	}
	if _, err := runCLI(t, "history", "delete", "--config", configFile, "missing"); err == nil {
		t.Error("expected error for unknown id on delete")
	}
}

func TestNichesCommand(t *testing.T) {
	configFile := writeCLIConfig(t, t.TempDir())
	out, err := runCLI(t, "niches", "--config", configFile)
	if err != nil {
		t.Fatalf("niches failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 niches, got %d: %q", len(lines), out)
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			t.Errorf("empty niche in %q", out)
		}
	}
}

func TestLoadConfig_DefaultsToHistoryFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("generator:\n  provider: mock\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	previous := configPath
	configPath = configFile
	t.Cleanup(func() { configPath = previous })

	config, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if config.Database.ConnectionString != historyDSN {
		t.Errorf("connection string = %q, want %q", config.Database.ConnectionString, historyDSN)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"A Fox, in the forest!": "a-fox-in-the-forest",
		"   ":                   "image",
		"日本":                    "image",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo"); got != "one ..." {
		t.Errorf("firstLine = %q", got)
	}
}
