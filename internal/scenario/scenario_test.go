package scenario

import (
	"strings"
	"testing"
)

func TestStdinJoinsInputsWithTrailingNewline(t *testing.T) {
	s := Scenario{
		Name:   "brightness",
		Inputs: []string{"9", "4", "4", "50", "3", "out1.png", "11"},
	}

	got := s.Stdin()
	want := "9\n4\n4\n50\n3\nout1.png\n11\n"
	if got != want {
		t.Fatalf("stdin = %q, want %q", got, want)
	}
}

func TestValidateRejectsEmptyScenarios(t *testing.T) {
	if err := (Scenario{Name: "", Inputs: []string{"11"}}).Validate(); err == nil {
		t.Fatal("expected error for missing name")
	}
	if err := (Scenario{Name: "empty"}).Validate(); err == nil {
		t.Fatal("expected error for empty inputs")
	}
	if err := (Scenario{Name: "ok", Inputs: []string{"11"}}).Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestArtifactFollowsSaveCommand(t *testing.T) {
	s := Scenario{
		Name:   "gaussian",
		Inputs: []string{"9", "4", "5", "5", "1.5", "3", "out2.png", "11"},
	}
	if got := s.Artifact(); got != "out2.png" {
		t.Fatalf("artifact = %q, want out2.png", got)
	}

	noSave := Scenario{Name: "quit only", Inputs: []string{"11"}}
	if got := noSave.Artifact(); got != "" {
		t.Fatalf("artifact = %q, want empty", got)
	}
}

func TestCatalogueScriptsAreSelfTerminating(t *testing.T) {
	catalogue := Catalogue()
	if len(catalogue) != 4 {
		t.Fatalf("catalogue size = %d, want 4", len(catalogue))
	}

	seenNames := map[string]bool{}
	seenArtifacts := map[string]bool{}
	for _, sc := range catalogue {
		if err := sc.Validate(); err != nil {
			t.Fatalf("validate %q: %v", sc.Name, err)
		}
		if last := sc.Inputs[len(sc.Inputs)-1]; last != "11" {
			t.Fatalf("scenario %q ends with %q, want quit command 11", sc.Name, last)
		}
		if seenNames[sc.Name] {
			t.Fatalf("duplicate scenario name %q", sc.Name)
		}
		seenNames[sc.Name] = true

		artifact := sc.Artifact()
		if artifact == "" {
			t.Fatalf("scenario %q saves no artifact", sc.Name)
		}
		if seenArtifacts[artifact] {
			t.Fatalf("artifact %q reused across scenarios", artifact)
		}
		seenArtifacts[artifact] = true
	}
}

func TestCatalogueSurfacesLiteralRotationAngle(t *testing.T) {
	for _, sc := range Catalogue() {
		if !strings.Contains(sc.Name, "rotation") {
			continue
		}
		if !strings.Contains(sc.Name, "90") {
			t.Fatalf("rotation scenario name = %q, want literal scripted angle 90", sc.Name)
		}
		return
	}
	t.Fatal("catalogue has no rotation scenario")
}
