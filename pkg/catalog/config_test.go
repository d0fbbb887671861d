package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	if !c.ParseRDDL || !c.URIForSystem {
		t.Errorf("expected ParseRDDL and URIForSystem on by default: %+v", c)
	}
	if c.AccessExternalEntity != "all" || c.AccessExternalDocument != "all" {
		t.Errorf("expected full default access: %+v", c)
	}
	if c.MergeHTTPS || c.MaskJarURIs || c.AlwaysResolve {
		t.Errorf("expected the remaining bools to default false: %+v", c)
	}
}

func TestLoadEnvOverlaysOnlySetVariables(t *testing.T) {
	c := NewConfig()
	c.ParseRDDL = true
	t.Setenv(envAlwaysResolve, "true")
	t.Setenv(envAccessEntity, "file,http")
	c.LoadEnv()

	if !c.AlwaysResolve {
		t.Errorf("expected AlwaysResolve set from env")
	}
	if c.AccessExternalEntity != "file,http" {
		t.Errorf("expected AccessExternalEntity from env, got %q", c.AccessExternalEntity)
	}
	if !c.ParseRDDL {
		t.Errorf("unset env vars must not clobber existing config")
	}
}

func TestSplitListUsesPathListSeparator(t *testing.T) {
	v := "a" + string(os.PathListSeparator) + "b" + string(os.PathListSeparator) + " c "
	got := splitList(v)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitList(%q) = %v, want %v", v, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitList(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestLoadPropertiesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolver.properties")
	content := "# a comment\n" + envAlwaysResolve + " = true\n\n" + envMergeHTTPS + "=true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewConfig()
	if err := c.LoadPropertiesFile(path); err != nil {
		t.Fatalf("LoadPropertiesFile: %v", err)
	}
	if !c.AlwaysResolve || !c.MergeHTTPS {
		t.Errorf("properties not applied: %+v", c)
	}
}

func TestLoadAllEnvWinsByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolver.properties")
	os.WriteFile(path, []byte(envAccessEntity+"=file\n"), 0o644)
	t.Setenv(envAccessEntity, "http")

	c := NewConfig()
	if err := c.LoadAll(path); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if c.AccessExternalEntity != "http" {
		t.Errorf("expected env to win over properties file by default, got %q", c.AccessExternalEntity)
	}
}

func TestLoadAllPropertyFilePreferred(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolver.properties")
	os.WriteFile(path, []byte(envAccessEntity+"=file\n"), 0o644)
	t.Setenv(envAccessEntity, "http")

	c := NewConfig()
	c.PreferPropertyFile = true
	if err := c.LoadAll(path); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if c.AccessExternalEntity != "file" {
		t.Errorf("expected properties file to win when PreferPropertyFile is set, got %q", c.AccessExternalEntity)
	}
}
