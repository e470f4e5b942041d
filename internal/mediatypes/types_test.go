package mediatypes

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		ext  string
		want Category
	}{
		{".jpg", CategoryImage},
		{".jpeg", CategoryImage},
		{".png", CategoryImage},
		{".webp", CategoryImage},
		{".svg", CategoryImage},
		{".mp4", CategoryVideo},
		{".mkv", CategoryVideo},
		{".webm", CategoryVideo},
		{".mp3", CategoryAudio},
		{".flac", CategoryAudio},
		{".m4a", CategoryAudio},
		{".pdf", CategoryDocument},
		{".docx", CategoryDocument},
		{".als", CategoryProject},
		{".flp", CategoryProject},
		{".uproject", CategoryProject},
		{".exe", CategoryUnknown},
		{".xyz", CategoryUnknown},
		{"", CategoryUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.ext); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestAllowed(t *testing.T) {
	if Allowed(CategoryUnknown, true) {
		t.Error("unknown files must never be allowed")
	}
	if Allowed(CategoryProject, false) {
		t.Error("project files require the opt-in flag")
	}
	if !Allowed(CategoryProject, true) {
		t.Error("project files should be allowed with the opt-in flag")
	}
	if !Allowed(CategoryImage, false) {
		t.Error("images should always be allowed")
	}
	if !Allowed(CategoryAudio, false) {
		t.Error("audio should always be allowed")
	}
}

func TestMimeType(t *testing.T) {
	if got := MimeType(".jpg"); got != "image/jpeg" {
		t.Errorf("MimeType(.jpg) = %q, want image/jpeg", got)
	}
	if got := MimeType(".flac"); got != "audio/flac" {
		t.Errorf("MimeType(.flac) = %q, want audio/flac", got)
	}
	if got := MimeType(".nope"); got != "application/octet-stream" {
		t.Errorf("MimeType(.nope) = %q, want application/octet-stream", got)
	}
}
