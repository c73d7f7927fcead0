package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestEngineLoadsDirectoriesInOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "core"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"core/base.lua": `THRESHOLD = 3`,
		"gate.lua":      `function door_open(ctx) return ctx.keys >= THRESHOLD end`,
		"notes.txt":     `not lua`,
	}
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	tests := []struct {
		keys int
		want bool
	}{
		{keys: 2, want: false},
		{keys: 3, want: true},
	}
	for _, tt := range tests {
		got, err := e.EvalCondition("door_open", Vars{"keys": tt.keys})
		if err != nil {
			t.Fatalf("EvalCondition: %v", err)
		}
		if got != tt.want {
			t.Fatalf("door_open(keys=%d) = %v, want %v", tt.keys, got, tt.want)
		}
	}
}

func TestEngineMissingDirIsEmpty(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine on missing dir: %v", err)
	}
	defer e.Close()
	if e.Has("anything") {
		t.Fatalf("unexpected global")
	}
}

func TestEngineSyntaxErrorFailsLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(dir, zap.NewNop()); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestRunSelectsPort(t *testing.T) {
	e := newEngine(zap.NewNop())
	defer e.Close()
	err := e.LoadString("test", `
		function pick(ctx)
			log("picking for " .. ctx.name)
			if ctx.tick > 10 then return 2 end
			return nil
		end
		function boom(ctx) error("kaput") end
	`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	if port, err := e.Run("pick", Vars{"name": "intro", "tick": uint64(11)}); err != nil || port != 2 {
		t.Fatalf("Run = %d, %v; want 2", port, err)
	}
	if port, err := e.Run("pick", Vars{"name": "intro", "tick": 1}); err != nil || port != 0 {
		t.Fatalf("Run = %d, %v; want 0", port, err)
	}
	if _, err := e.Run("boom", nil); err == nil {
		t.Fatalf("runtime error not reported")
	}
	if _, err := e.Run("missing", nil); err == nil {
		t.Fatalf("missing function not reported")
	}
}
