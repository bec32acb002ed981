package whisper

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	if info := Get("base.en"); info == nil || info.Filename != "ggml-base.en.bin" {
		t.Errorf("Get(base.en) = %+v", info)
	}
	if info := Get("nonexistent"); info != nil {
		t.Errorf("Get(nonexistent) = %+v, want nil", info)
	}
}

func TestList(t *testing.T) {
	list := List()
	if len(list) == 0 {
		t.Fatal("List() is empty")
	}
	var multilingual bool
	for _, m := range list {
		if m.Multilingual {
			multilingual = true
		}
	}
	if !multilingual {
		t.Error("List() has no multilingual models")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"literal path", "/opt/models/ggml-base.en.bin", "/opt/models/ggml-base.en.bin", false},
		{"relative bin file", "custom.bin", "custom.bin", false},
		{"empty", "", "", true},
		{"unknown id", "nonexistent", "", true},
		{"known but uninstalled id", "large-v3", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPath(t *testing.T) {
	path, err := Path("base.en")
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if !strings.HasSuffix(path, "ggml-base.en.bin") {
		t.Errorf("Path() = %q", path)
	}
	if _, err := Path("nonexistent"); err == nil {
		t.Error("Path(nonexistent) should fail")
	}
}
