package piper

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		file       string
		config     string
		wantLang   string
		wantRate   int
		wantConfig bool
	}{
		{
			name:       "with config",
			file:       "en_US-lessac-medium.onnx",
			config:     `{"audio":{"sample_rate":16000},"language":{"code":"en_GB"}}`,
			wantLang:   "en-GB",
			wantRate:   16000,
			wantConfig: true,
		},
		{
			name:     "without config",
			file:     "de_DE-thorsten-low.onnx",
			wantLang: "de-DE",
			wantRate: DefaultSampleRate,
		},
		{
			name:       "invalid config",
			file:       "fr_FR-siwis-medium.onnx",
			config:     `{not json`,
			wantLang:   "fr-FR",
			wantRate:   DefaultSampleRate,
			wantConfig: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, "onnx")
			if tt.config != "" {
				writeFile(t, path+".json", tt.config)
			}

			m := LoadModel(path)
			if m.Voice.Language != tt.wantLang {
				t.Errorf("expected language %q, got %q", tt.wantLang, m.Voice.Language)
			}
			if m.SampleRate != tt.wantRate {
				t.Errorf("expected sample rate %d, got %d", tt.wantRate, m.SampleRate)
			}
			if (m.ConfigPath != "") != tt.wantConfig {
				t.Errorf("unexpected config path %q", m.ConfigPath)
			}
			if m.Path != path {
				t.Errorf("expected path %q, got %q", path, m.Path)
			}
		})
	}
}

func TestFindModels(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "zz_ZZ-last.onnx"), "onnx")
	writeFile(t, filepath.Join(dir, "nested", "en_US-amy-low.onnx"), "onnx")
	writeFile(t, filepath.Join(dir, "nested", "en_US-amy-low.onnx.json"), `{"language":{"code":"en_US"}}`)
	writeFile(t, filepath.Join(dir, "README.md"), "not a model")

	models, err := FindModels([]string{dir, filepath.Join(dir, "missing")})
	if err != nil {
		t.Fatalf("FindModels failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d: %+v", len(models), models)
	}
	if models[0].Voice.Name != "en_US-amy-low" || models[1].Voice.Name != "zz_ZZ-last" {
		t.Errorf("expected models sorted by name, got %q, %q", models[0].Voice.Name, models[1].Voice.Name)
	}
}
