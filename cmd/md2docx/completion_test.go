package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell Shell
		want  []string
	}{
		{ShellBash, []string{"_md2docx_completions", "complete -F", "compgen", "--page-size|-p) COMPREPLY=($(compgen -W \"a4 letter legal\"", "compgen -d"}},
		{ShellZsh, []string{"#compdef md2docx", "_arguments", "_describe", "(portrait landscape)", "_files -/"}},
		{ShellFish, []string{"complete -c md2docx", "__fish_md2docx_needs_command", "__fish_md2docx_using_command convert", "-l output -s o"}},
		{ShellPowerShell, []string{"Register-ArgumentCompleter", "-CommandName md2docx", "CompletionResult", "'--no-diagrams'"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%q) error = %v", tt.shell, err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("%s script missing %q", tt.shell, w)
				}
			}
			for _, cmd := range getCommands() {
				if !strings.Contains(out, cmd.Name) {
					t.Errorf("%s script missing command %q", tt.shell, cmd.Name)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	err := GenerateCompletion(&bytes.Buffer{}, Shell("tcsh"))
	if !errors.Is(err, ErrUnsupportedShell) || !strings.Contains(err.Error(), "tcsh") {
		t.Errorf("error = %v, want ErrUnsupportedShell naming the shell", err)
	}
}

func TestGetCommands_ConvertFlags(t *testing.T) {
	t.Parallel()

	var convert commandDef
	for _, c := range getCommands() {
		if c.Name == "convert" {
			convert = c
		}
	}

	byName := make(map[string]flagDef)
	for _, f := range convert.Flags {
		byName[f.Long] = f
	}

	tests := []struct {
		name      string
		wantShort string
		wantType  flagType
	}{
		{"output", "o", flagDir},
		{"config", "c", flagFile},
		{"workers", "w", flagInt},
		{"margin", "", flagFloat},
		{"quiet", "q", flagBool},
		{"page-size", "p", flagEnum},
		{"style", "", flagEnum},
		{"asset-path", "", flagDir},
		{"title", "", flagString},
	}

	for _, tt := range tests {
		f, ok := byName[tt.name]
		if !ok {
			t.Errorf("flag --%s not found", tt.name)
			continue
		}
		if f.Short != tt.wantShort || f.Type != tt.wantType {
			t.Errorf("flag --%s = short %q type %v, want %q %v", tt.name, f.Short, f.Type, tt.wantShort, tt.wantType)
		}
	}

	if got := byName["style"].Values; len(got) < 2 {
		t.Errorf("style values = %v, want the embedded style names", got)
	}
}

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(newFakePool())
	if code := run(context.Background(), []string{"completion"}, env); code != ExitSuccess {
		t.Errorf("completion without shell = %d, want ExitSuccess", code)
	}
	if !strings.Contains(stdout.String(), "Usage: md2docx completion") {
		t.Errorf("stdout = %q, want usage", stdout)
	}

	env, _, stderr := testEnv(newFakePool())
	if code := run(context.Background(), []string{"completion", "tcsh"}, env); code != ExitUsage {
		t.Errorf("completion tcsh = %d, want ExitUsage", code)
	}
	if !strings.Contains(stderr.String(), "unsupported shell") {
		t.Errorf("stderr = %q", stderr)
	}
}
