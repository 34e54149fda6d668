package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// isolate points HOME and the working directory at fresh temp dirs
func isolate(t *testing.T) (home, cwd string) {
	t.Helper()
	home = t.TempDir()
	cwd = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	origDir, _ := os.Getwd()
	if err := os.Chdir(cwd); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })
	return home, cwd
}

func TestLoad_MissingReturnsDefault(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := DefaultConfig()
	want.Path, _ = GlobalPath()
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load() = %+v, want default %+v", cfg, want)
	}
}

func TestSaveThenLoadGlobal(t *testing.T) {
	home, _ := isolate(t)

	want := &Config{
		FlashTool: []string{"python3", "-m", "esptool"},
		Packer:    "/opt/mkspiffs",
		LastPort:  "/dev/ttyACM0",
		Debug:     true,
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".spiffs-uploader", "config.json")); err != nil {
		t.Fatalf("global config not written: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Packer != want.Packer || got.LastPort != want.LastPort || !got.Debug ||
		!reflect.DeepEqual(got.FlashTool, want.FlashTool) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	_, cwd := isolate(t)

	if err := Save(&Config{Packer: "global-mkspiffs"}); err != nil {
		t.Fatal(err)
	}
	if err := SaveTo(&Config{Packer: "project-mkspiffs"}, filepath.Join(cwd, ".spiffs-uploader", "config.json")); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Packer != "project-mkspiffs" {
		t.Errorf("Packer = %q, want project-mkspiffs", cfg.Packer)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() with invalid JSON returned nil error")
	}
}

func TestInitialPort(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		available []string
		want      string
	}{
		{"last port present", Config{LastPort: "COM7", DefaultPort: "COM6"}, []string{"COM3", "COM7"}, "COM7"},
		{"last port gone falls back to default", Config{LastPort: "COM9", DefaultPort: "COM6"}, []string{"COM3"}, "COM6"},
		{"first available", Config{}, []string{"/dev/ttyACM0", "/dev/ttyUSB0"}, "/dev/ttyACM0"},
		{"nothing available keeps last", Config{LastPort: "/dev/ttyACM0"}, nil, "/dev/ttyACM0"},
		{"nothing at all", Config{}, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.InitialPort(tt.available); got != tt.want {
				t.Errorf("InitialPort() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_GlobalYAML(t *testing.T) {
	home, _ := isolate(t)

	path := filepath.Join(home, ".spiffs-uploader", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	data := "flash_tool:\n  - python3\n  - -m\n  - esptool\ndefault_port: /dev/ttyUSB0\ndebug: true\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DefaultPort != "/dev/ttyUSB0" || !cfg.Debug ||
		!reflect.DeepEqual(cfg.FlashTool, []string{"python3", "-m", "esptool"}) {
		t.Errorf("Load() = %+v", cfg)
	}

	// Saving keeps the user's YAML file rather than adding a JSON one
	cfg.LastPort = "/dev/ttyUSB0"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".spiffs-uploader", "config.json")); !os.IsNotExist(err) {
		t.Error("Save() wrote config.json next to an existing config.yaml")
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.LastPort != "/dev/ttyUSB0" {
		t.Errorf("LastPort = %q after save", got.LastPort)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("flash_tool: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() with invalid YAML returned nil error")
	}
}

func TestSave_ProjectConfigStaysLocal(t *testing.T) {
	home, cwd := isolate(t)

	projectPath := filepath.Join(cwd, ".spiffs-uploader", "config.json")
	if err := SaveTo(&Config{Packer: "./tools/mkspiffs", FlashTool: []string{"esptool"}}, projectPath); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	cfg.LastPort = "/dev/ttyACM0"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(home, ".spiffs-uploader", "config.json")); !os.IsNotExist(err) {
		t.Error("saving a project config leaked it into the global file")
	}
	got, err := LoadFrom(projectPath)
	if err != nil {
		t.Fatal(err)
	}
	if got.LastPort != "/dev/ttyACM0" || got.Packer != "./tools/mkspiffs" {
		t.Errorf("project config after save = %+v", got)
	}
}
