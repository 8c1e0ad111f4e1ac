package utils

import (
	"mime/multipart"
	"testing"
)

func TestValidateEvidenceFile(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"screenshot", "final-board.PNG", 120_000, false},
		{"replay video", "round3.mp4", 18 * 1024 * 1024, false},
		{"chat log", "lobby-chat.log", 4_096, false},
		{"oversized", "full-stream.mp4", MaxEvidenceSize + 1, true},
		{"executable", "totally-a-screenshot.exe", 1_024, true},
		{"no extension", "evidence", 1_024, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fh := &multipart.FileHeader{Filename: tc.filename, Size: tc.size}
			err := ValidateEvidenceFile(fh)
			if tc.wantErr && err == nil {
				t.Errorf("expected %q to be rejected", tc.filename)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected %q to be accepted, got %v", tc.filename, err)
			}
		})
	}
}
