package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/FocuswithJustin/MuseScoreTools/core/container"
	"github.com/FocuswithJustin/MuseScoreTools/core/xml"
)

const bookScore = `<?xml version="1.0" encoding="UTF-8"?>
<museScore version="3.02">
  <Score>
    <Staff id="1">
      <VBox>
        <Text><style>Title</style><text>Song A</text></Text>
      </VBox>
      <Measure>
        <voice>
          <Clef><concertClefType>F</concertClefType></Clef>
          <Chord/>
        </voice>
      </Measure>
      <VBox>
        <Text><style>Title</style><text>Song B</text></Text>
      </VBox>
      <Measure>
        <voice><Chord/></voice>
      </Measure>
    </Staff>
  </Score>
</museScore>
`

// Test helper functions

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// runCLI runs mst with an isolated config and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "absent.toml")
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", cfg, "--log-format", "json", "--log-level", "error"}, args...)
	err := run(full, &stdout, &stderr)
	return stdout.String(), err
}

func countNodes(t *testing.T, path, expr string) int {
	t.Helper()
	doc, err := container.Load(path)
	if err != nil {
		t.Fatalf("failed to load %s: %v", path, err)
	}
	nodes, err := xml.Query(doc.Root(), expr)
	if err != nil {
		t.Fatalf("bad query %s: %v", expr, err)
	}
	return len(nodes)
}

// Tests for ConvertCmd

func TestConvertCmd_Run(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "book.mscx", bookScore)

	out, err := runCLI(t, "convert", "--remove-clefs", "--add-section-break", path)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if !strings.Contains(out, "book.mscx") {
		t.Errorf("expected result table to list the file, got:\n%s", out)
	}
	if n := countNodes(t, path, "//Clef"); n != 0 {
		t.Errorf("clefs = %d, want 0", n)
	}
	if n := countNodes(t, path, "//LayoutBreak[subtype='section']"); n != 1 {
		t.Errorf("section breaks = %d, want 1", n)
	}
	if _, err := os.Stat(path + "~"); err != nil {
		t.Errorf("expected backup: %v", err)
	}
}

func TestConvertCmd_NoBackupJSON(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "book.mscx", bookScore)

	out, err := runCLI(t, "convert", "--remove-clefs", "--no-backup", "--json", path)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	var results []map[string]any
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(results) != 1 || results[0]["path"] != path {
		t.Errorf("unexpected results: %v", results)
	}
	if _, err := os.Stat(path + "~"); !os.IsNotExist(err) {
		t.Error("backup should not be written with --no-backup")
	}
}

func TestConvertCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	good := createTestFile(t, dir, "good.mscx", bookScore)
	bad := createTestFile(t, dir, "bad.mscx", "<museScore><Score></museScore>")

	if _, err := runCLI(t, "convert", good); err == nil || !strings.Contains(err.Error(), "no transforms") {
		t.Errorf("expected no-transform error, got %v", err)
	}

	_, err := runCLI(t, "convert", "--remove-clefs", bad, good)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Errorf("expected partial failure, got %v", err)
	}
	if n := countNodes(t, good, "//Clef"); n != 0 {
		t.Error("good file should still be converted")
	}
}

func TestConvertCmd_ConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "book.mscx", bookScore)
	cfg := createTestFile(t, dir, "mst.toml", "[convert]\nremove_clefs = true\nbackup = false\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--config", cfg, "--log-level", "error", "convert", path}, &stdout, &stderr); err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if n := countNodes(t, path, "//Clef"); n != 0 {
		t.Errorf("clefs = %d, want 0 from config default", n)
	}
	if _, err := os.Stat(path + "~"); !os.IsNotExist(err) {
		t.Error("config backup=false should suppress backups")
	}
}

// Tests for MergeCmd and SplitCmd

func TestSplitThenMerge(t *testing.T) {
	dir := t.TempDir()
	src := createTestFile(t, dir, "book.mscx", bookScore)
	partsDir := filepath.Join(dir, "parts")

	out, err := runCLI(t, "split", src, "--out-dir", partsDir)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	partA := filepath.Join(partsDir, "Song A.mscz")
	partB := filepath.Join(partsDir, "Song B.mscz")
	for _, p := range []string{partA, partB} {
		if !strings.Contains(out, p) {
			t.Errorf("split output missing %s:\n%s", p, out)
		}
		if n := countNodes(t, p, "Score/Staff/VBox"); n != 1 {
			t.Errorf("%s VBoxes = %d, want 1", filepath.Base(p), n)
		}
	}

	merged := filepath.Join(dir, "merged.mscx")
	if _, err := runCLI(t, "merge", partA, partB, "--out", merged); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if n := countNodes(t, merged, "Score/Staff/VBox"); n != 2 {
		t.Errorf("merged VBoxes = %d, want 2", n)
	}
	if n := countNodes(t, merged, "Score/Staff/Measure"); n != 2 {
		t.Errorf("merged measures = %d, want 2", n)
	}
}

func TestMergeCmd_UnsupportedOutput(t *testing.T) {
	dir := t.TempDir()
	src := createTestFile(t, dir, "a.mscx", bookScore)
	if _, err := runCLI(t, "merge", src, "--out", filepath.Join(dir, "out.txt")); err == nil {
		t.Error("expected error for unsupported output extension")
	}
}

func TestSplitCmd_NoMarkers(t *testing.T) {
	dir := t.TempDir()
	src := createTestFile(t, dir, "plain.mscx", `<museScore><Score><Staff><Measure/></Staff></Score></museScore>`)
	out, err := runCLI(t, "split", src, "--out-dir", dir)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if !strings.Contains(out, "nothing written") {
		t.Errorf("expected nothing-written notice, got %q", out)
	}
}

// Tests for InspectCmd

func TestInspectCmd_Run(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "book.mscx", bookScore)

	out, err := runCLI(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"book.mscx", "Song A; Song B", "Measures"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "inspect", "--json", path)
	if err != nil {
		t.Fatalf("inspect --json failed: %v", err)
	}
	var results []inspection
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(results) != 1 || results[0].Stats == nil {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Stats.Measures != 2 || results[0].Stats.Clefs != 1 {
		t.Errorf("unexpected stats: %+v", *results[0].Stats)
	}
	if len(results[0].Fingerprint) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(results[0].Fingerprint))
	}
}

func TestInspectCmd_MismatchedContent(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "fake.mscz", bookScore)

	out, err := runCLI(t, "inspect", path)
	if err == nil {
		t.Error("expected inspect to report a failure")
	}
	if !strings.Contains(out, "error:") {
		t.Errorf("expected error row, got:\n%s", out)
	}
}

// Tests for ConfigGroup and VersionCmd

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "conf", "config.toml")

	if _, err := runCLI(t, "config", "init", cfgPath); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := runCLI(t, "config", "init", cfgPath); err == nil {
		t.Error("expected refusal to overwrite without --force")
	}
	if _, err := runCLI(t, "config", "init", "--force", cfgPath); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--config", cfgPath, "config", "show"}, &stdout, &stderr); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(stdout.String(), cfgPath) || !strings.Contains(stdout.String(), "collision_retries") {
		t.Errorf("unexpected config show output:\n%s", stdout.String())
	}
}

func TestVersionCmd_Run(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("expected version %s in %q", version, out)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cfg := filepath.Join(t.TempDir(), "absent.toml")
	if err := run([]string{"--config", cfg, "--log-level", "loud", "version"}, &stdout, &stderr); err == nil {
		t.Error("expected error for unknown log level")
	}
}
