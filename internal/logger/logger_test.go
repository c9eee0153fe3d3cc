package logger

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		level    string
		encoding string
		wantErr  bool
	}{
		{"dev console", "dev", "debug", "console", false},
		{"prod json", "prod", "info", "json", false},
		{"default encoding", "dev", "warn", "", false},
		{"bad level", "dev", "loud", "json", true},
		{"bad encoding", "dev", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, err := New(tt.env, tt.level, tt.encoding, "stock-console", "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && lg == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
