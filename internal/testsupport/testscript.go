package testsupport

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/amonks/recur/note"
	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce sync.Once
	recurPath string
	buildErr  error
)

// BuildRecur builds the recur binary once and returns its path.
func BuildRecur(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "recur-bin-")
		if err != nil {
			buildErr = err
			return
		}

		recurPath = filepath.Join(binDir, "recur")
		cmd := exec.Command("go", "build", "-o", recurPath, "./cmd/recur")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build recur: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return recurPath
}

// SetupScriptEnv configures common environment variables for testscript.
// The script's work directory is the vault.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("RECUR", BuildRecur(t))

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("RECUR_VAULT", env.WorkDir)
	env.Setenv("EDITOR", "")
	env.Setenv("NO_COLOR", "1")
	return nil
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdProperty asserts the frontmatter value of a note.
// With negation it asserts that the value differs or the key is absent.
func CmdProperty(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 3 {
		ts.Fatalf("usage: property FILE KEY VALUE")
	}

	doc, err := note.Parse(args[0], []byte(ts.ReadFile(args[0])))
	if err != nil {
		ts.Fatalf("parse %s: %v", args[0], err)
	}
	got, ok := doc.Properties.String(args[1])
	matches := ok && got == args[2]
	if neg && matches {
		ts.Fatalf("%s: %s is %q", args[0], args[1], got)
	}
	if !neg && !matches {
		ts.Fatalf("%s: %s is %q (present: %v), want %q", args[0], args[1], got, ok, args[2])
	}
}

// Commands returns the custom testscript commands shared by recur's scripts.
func Commands() map[string]func(ts *testscript.TestScript, neg bool, args []string) {
	return map[string]func(ts *testscript.TestScript, neg bool, args []string){
		"envset":   CmdEnvSet,
		"property": CmdProperty,
	}
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
