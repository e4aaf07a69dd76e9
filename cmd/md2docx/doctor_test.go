package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		result  *doctorResult
		want    []string
		without []string
	}{
		{
			name: "ready",
			result: &doctorResult{
				Status:  statusReady,
				Chrome:  chromeInfo{Found: true, Path: "/usr/bin/chromium", Version: "Chromium 120", Sandbox: true},
				Formula: formulaInfo{OK: true, Duration: "12ms"},
				Env:     envInfo{OS: "linux", Arch: "amd64"},
				System:  systemInfo{TempWritable: true},
			},
			want:    []string{"Found at /usr/bin/chromium", "Version: Chromium 120", "Sandbox: enabled", "typeset in 12ms", "linux/amd64", "Ready to convert"},
			without: []string{"[ERROR]", "[WARN]"},
		},
		{
			name: "warnings in a container",
			result: &doctorResult{
				Status:   statusWarnings,
				Chrome:   chromeInfo{Found: true, Path: "/chrome"},
				Formula:  formulaInfo{OK: true},
				Env:      envInfo{Container: true, ContainerHint: "/.dockerenv", CI: true},
				System:   systemInfo{TempWritable: true},
				Warnings: []string{"set ROD_NO_SANDBOX=1"},
			},
			want: []string{"Sandbox: disabled", "Container: detected (/.dockerenv)", "CI: detected", "[WARN] set ROD_NO_SANDBOX=1", "Ready with warnings"},
		},
		{
			name: "browser missing",
			result: &doctorResult{
				Status:         statusErrors,
				Formula:        formulaInfo{OK: true},
				System:         systemInfo{TempWritable: true},
				Errors:         []string{"Chrome/Chromium not found"},
				browserMissing: true,
			},
			want: []string{"[ERROR] Not found", "Diagrams unavailable", "--no-diagrams"},
		},
		{
			name: "other errors",
			result: &doctorResult{
				Status: statusErrors,
				Chrome: chromeInfo{Found: true, Path: "/chrome"},
				Errors: []string{"Temp directory not writable: /tmp"},
			},
			want: []string{"Sample failed to typeset", "Temp directory: not writable", "Not ready"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printDoctorResult(&buf, tt.result)
			got := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
			for _, w := range tt.without {
				if strings.Contains(got, w) {
					t.Errorf("output should not contain %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestCheckSystem(t *testing.T) {
	t.Parallel()

	result := &doctorResult{}
	checkSystem(result)
	if !result.System.TempWritable || len(result.Errors) != 0 {
		t.Errorf("checkSystem() = %+v, errors %v", result.System, result.Errors)
	}
}

func TestCheckFormula(t *testing.T) {
	t.Parallel()

	result := &doctorResult{}
	checkFormula(t.Context(), result)
	if !result.Formula.OK || result.Formula.Duration == "" {
		t.Errorf("checkFormula() = %+v, errors %v", result.Formula, result.Errors)
	}
}

// The tests below use t.Setenv and cannot run in parallel.

func TestIsContainer_Override(t *testing.T) {
	t.Setenv("MD2DOCX_CONTAINER", "1")

	got, hint := isContainer()
	if !got || hint != "MD2DOCX_CONTAINER=1" {
		t.Errorf("isContainer() = %v, %q", got, hint)
	}
}

func TestCheckEnvironment_CIWithoutNoSandboxWarns(t *testing.T) {
	t.Setenv("CI", "true")

	result := &doctorResult{Env: envInfo{NoSandbox: ""}}
	checkEnvironment(result)
	if !result.Env.CI {
		t.Error("CI should be detected")
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "ROD_NO_SANDBOX") {
		t.Errorf("Warnings = %v", result.Warnings)
	}

	result = &doctorResult{Env: envInfo{NoSandbox: "1"}}
	checkEnvironment(result)
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none with ROD_NO_SANDBOX=1", result.Warnings)
	}
}
