package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/thoreinstein/rbak/internal/errors"
)

func TestInit(t *testing.T) {
	t.Setenv("RBAK_CONFIG_DIR", t.TempDir())

	Init()

	if viper.GetInt("version") != 1 {
		t.Errorf("expected version default 1, got %d", viper.GetInt("version"))
	}
	if got := viper.GetString("file_extension"); got != "bak" {
		t.Errorf("expected file_extension default bak, got %q", got)
	}
	if got := viper.GetString("dir_suffix"); got != "_bak" {
		t.Errorf("expected dir_suffix default _bak, got %q", got)
	}
	if got := viper.GetString("on_unsupported"); got != "skip" {
		t.Errorf("expected on_unsupported default skip, got %q", got)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Point at an empty dir to avoid loading the user's config.
	t.Setenv("RBAK_CONFIG_DIR", t.TempDir())

	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
	if FileUsed() != "" {
		t.Errorf("FileUsed() = %q, want empty", FileUsed())
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	t.Setenv("RBAK_CONFIG_DIR", t.TempDir())

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte("version: 1\nfile_extension: orig\ndir_suffix: .old\nfollow_symlinks: true\n")
	if err := os.WriteFile(configPath, content, 0o600); err != nil {
		t.Fatal(err)
	}

	Init()

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.FileExtension != "orig" {
		t.Errorf("FileExtension = %q, want orig", cfg.FileExtension)
	}
	if cfg.DirSuffix != ".old" {
		t.Errorf("DirSuffix = %q, want .old", cfg.DirSuffix)
	}
	if !cfg.FollowSymlinks {
		t.Error("FollowSymlinks = false, want true")
	}
	if cfg.OnUnsupported != "skip" {
		t.Errorf("OnUnsupported = %q, want default skip", cfg.OnUnsupported)
	}
	if FileUsed() != configPath {
		t.Errorf("FileUsed() = %q, want %q", FileUsed(), configPath)
	}
}

func TestLoad_ConfigDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RBAK_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("overwrite: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Overwrite {
		t.Error("Overwrite = false, want true from RBAK_CONFIG_DIR config")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RBAK_CONFIG_DIR", t.TempDir())
	t.Setenv("RBAK_DIR_SUFFIX", ".snapshot")
	t.Setenv("RBAK_ON_UNSUPPORTED", "fail")

	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DirSuffix != ".snapshot" {
		t.Errorf("DirSuffix = %q, want .snapshot", cfg.DirSuffix)
	}
	if cfg.OnUnsupported != "fail" {
		t.Errorf("OnUnsupported = %q, want fail", cfg.OnUnsupported)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("RBAK_CONFIG_DIR", t.TempDir())
	Init()

	_, err := Load("/non/existent/path/config.yaml")
	if err == nil {
		t.Fatal("Load() with non-existent explicit path should error")
	}
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	t.Setenv("RBAK_CONFIG_DIR", t.TempDir())
	Init()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("version: [1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for malformed YAML")
	}
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid version",
			content: "version: 2\n",
			wantErr: "version: unsupported config version: 2",
		},
		{
			name:    "extension with separator",
			content: "file_extension: a/b\n",
			wantErr: "file_extension: invalid name component: a/b",
		},
		{
			name:    "empty dir suffix",
			content: "dir_suffix: \"\"\n",
			wantErr: "dir_suffix: invalid name component: ",
		},
		{
			name:    "unknown policy",
			content: "on_unsupported: follow\n",
			wantErr: "on_unsupported: invalid on_unsupported policy: follow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RBAK_CONFIG_DIR", t.TempDir())
			Init()

			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			_, err := Load(configPath)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if err.Error() != "validating config: "+tt.wantErr {
				t.Errorf("Load() error = %q, want %q", err, "validating config: "+tt.wantErr)
			}
			if !errors.Is(err, errors.ErrInvalidConfig) {
				t.Errorf("Load() error should be marked ErrInvalidConfig")
			}
		})
	}
}

func TestInit_ClearsPreviousState(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "config_a.yaml")
	if err := os.WriteFile(fileA, []byte("version: 1\nfile_extension: a\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RBAK_CONFIG_DIR", t.TempDir())
	Init()
	if _, err := Load(fileA); err != nil {
		t.Fatalf("First Load failed: %v", err)
	}

	dirB := t.TempDir()
	t.Setenv("RBAK_CONFIG_DIR", dirB)
	fileB := filepath.Join(dirB, "config.yaml")
	if err := os.WriteFile(fileB, []byte("version: 1\nfile_extension: b\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	// Re-initializing must forget fileA.
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Second Load failed: %v", err)
	}
	if cfg.FileExtension != "b" {
		t.Errorf("FileExtension = %q, want b from %s (used %s)", cfg.FileExtension, fileB, FileUsed())
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}

	t.Setenv("RBAK_CONFIG_DIR", t.TempDir())
	Init()
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of written default failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("round-tripped config = %+v, want %+v", cfg, Default())
	}

	err = WriteDefault(path, false)
	if !errors.Is(err, errors.ErrAlreadyExists) {
		t.Errorf("second WriteDefault() error = %v, want ErrAlreadyExists", err)
	}

	if err := WriteDefault(path, true); err != nil {
		t.Errorf("WriteDefault(force) error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	if errs := Validate(Default()); len(errs) != 0 {
		t.Errorf("Validate(Default()) = %v, want no errors", errs)
	}

	cfg := Default()
	cfg.FileExtension = ".bak"
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("leading dot extension should be valid, got %v", errs)
	}

	cfg = Default()
	cfg.Version = 0
	cfg.DirSuffix = "a\\b"
	errs := Validate(cfg)
	if len(errs) != 2 {
		t.Fatalf("Validate() returned %d errors, want 2: %v", len(errs), errs)
	}
	if !errors.Is(errs[0], ErrUnsupportedVersion) {
		t.Errorf("errs[0] = %v, want ErrUnsupportedVersion", errs[0])
	}
	if !errors.Is(errs[1], ErrInvalidName) {
		t.Errorf("errs[1] = %v, want ErrInvalidName", errs[1])
	}

	if errs := Validate(nil); len(errs) != 1 {
		t.Errorf("Validate(nil) = %v, want one error", errs)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RBAK_CONFIG_DIR", dir)

	if Dir() != dir {
		t.Errorf("Dir() = %q, want %q", Dir(), dir)
	}
	if want := filepath.Join(dir, "config.yaml"); DefaultPath() != want {
		t.Errorf("DefaultPath() = %q, want %q", DefaultPath(), want)
	}

	t.Setenv("RBAK_CONFIG_DIR", "")
	if filepath.Base(Dir()) != "rbak" {
		t.Errorf("Dir() = %q, want an rbak directory under the XDG config home", Dir())
	}
}
