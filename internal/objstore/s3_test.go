package objstore

import (
	"context"
	"testing"
	"time"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		key  string
		want string
	}{
		{
			name: "public base url",
			cfg:  Config{Bucket: "virex", PublicBaseURL: "https://cdn.example.com/files/"},
			key:  "downloads/2026/01/02/a b.pdf",
			want: "https://cdn.example.com/files/downloads/2026/01/02/a%20b.pdf",
		},
		{
			name: "custom endpoint",
			cfg:  Config{Bucket: "virex", Endpoint: "http://localhost:9000"},
			key:  "imports/x.csv",
			want: "http://localhost:9000/virex/imports/x.csv",
		},
		{
			name: "aws",
			cfg:  Config{Bucket: "virex", Region: "ap-northeast-2"},
			key:  "x.pdf",
			want: "https://virex.s3.ap-northeast-2.amazonaws.com/x.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicURL(tt.cfg, tt.key); got != tt.want {
				t.Errorf("PublicURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		fileName string
		want     string
	}{
		{"manual.pdf", "downloads/2026/03/09/abc-manual.pdf"},
		{`C:\Users\me\manual.pdf`, "downloads/2026/03/09/abc-manual.pdf"},
		{"../../etc/passwd", "downloads/2026/03/09/abc-passwd"},
	}

	for _, tt := range tests {
		if got := ObjectKey("downloads", "abc", tt.fileName, now); got != tt.want {
			t.Errorf("ObjectKey(%q) = %q, want %q", tt.fileName, got, tt.want)
		}
	}
}

func TestNewClient_RequiresBucket(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); err == nil {
		t.Fatal("NewClient() without bucket should fail")
	}
}
