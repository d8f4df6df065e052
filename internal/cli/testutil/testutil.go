// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
)

// Sources of the sample project.
const (
	JavaSource = `package shop;

class Cart {
    private int total;

    void add(Item item) {
        if (item.price() > 100) {
            total += discount(item);
        } else if (item.free()) {
            return;
        } else {
            total += item.price();
        }
        log.info("added");
    }
}
`
	PythonSource = `import os

def main(args):
    for a in args:
        print(os.path.join("x", a))
`
	BrokenJava = "class Broken { void m() { int x = ; } }\n"
)

// SetupTestProject creates a temporary project with Java and Python sources
// and switches into it. Files under build/ must be excluded by default.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"src/shop/Cart.java": JavaSource,
		"scripts/main.py":    PythonSource,
		"README.md":          "# shop\n",
		"build/gen/Gen.java": JavaSource,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	t.Chdir(dir)
	return dir
}

// WriteFile writes a file relative to the working directory.
func WriteFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(name, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// Execute runs cmd with args and returns its captured stdout and stderr.
func Execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
