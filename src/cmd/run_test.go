package cmd

import "testing"

func TestParseRunOverrideEmpty(t *testing.T) {
	runNode, runNpm, runPnpm, runYarn = "", "", "", ""
	override, err := parseRunOverride()
	if err != nil {
		t.Fatalf("parseRunOverride: %v", err)
	}
	if override.Runtime != nil || override.Npm != nil || override.Pnpm != nil || override.Yarn != nil {
		t.Errorf("expected a zero Override, got %+v", override)
	}
}

func TestParseRunOverrideSetsFields(t *testing.T) {
	runNode, runNpm, runPnpm, runYarn = "18.16.0", "9.5.1", "", ""
	defer func() { runNode, runNpm, runPnpm, runYarn = "", "", "", "" }()

	override, err := parseRunOverride()
	if err != nil {
		t.Fatalf("parseRunOverride: %v", err)
	}
	if override.Runtime == nil || override.Runtime.String() != "18.16.0" {
		t.Errorf("Runtime = %v, want 18.16.0", override.Runtime)
	}
	if override.Npm == nil || override.Npm.String() != "9.5.1" {
		t.Errorf("Npm = %v, want 9.5.1", override.Npm)
	}
	if override.Pnpm != nil || override.Yarn != nil {
		t.Errorf("expected Pnpm/Yarn unset, got %+v / %+v", override.Pnpm, override.Yarn)
	}
}

func TestParseRunOverrideInvalidVersion(t *testing.T) {
	runNode = "not-a-version"
	defer func() { runNode = "" }()

	if _, err := parseRunOverride(); err == nil {
		t.Error("expected an error for an invalid version")
	}
}
