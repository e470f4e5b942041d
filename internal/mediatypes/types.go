package mediatypes

// Category classifies a file by what kind of media it holds.
type Category string

const (
	// CategoryImage represents an image file.
	CategoryImage Category = "image"
	// CategoryVideo represents a video file.
	CategoryVideo Category = "video"
	// CategoryAudio represents an audio file.
	CategoryAudio Category = "audio"
	// CategoryDocument represents a document file.
	CategoryDocument Category = "document"
	// CategoryProject represents a DAW or editor project file.
	CategoryProject Category = "project"
	// CategoryUnknown represents an unrecognized file type.
	CategoryUnknown Category = "unknown"
)

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

// AudioExtensions maps file extensions to whether they are supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".aac":  true,
	".m4a":  true,
}

// DocumentExtensions maps file extensions to whether they are supported document formats.
var DocumentExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// ProjectExtensions maps file extensions to recognized project file formats.
var ProjectExtensions = map[string]bool{
	".als":      true, // Ableton Live
	".uproject": true, // Unreal Engine
	".unity":    true, // Unity
	".logicx":   true, // Logic Pro
	".flp":      true, // FL Studio
	".prproj":   true, // Premiere Pro
	".drp":      true, // DaVinci Resolve
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",

	// Videos
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",

	// Audio
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".m4a":  "audio/mp4",

	// Documents
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// Classify returns the Category for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns CategoryUnknown if the extension is not recognized.
func Classify(ext string) Category {
	switch {
	case ImageExtensions[ext]:
		return CategoryImage
	case VideoExtensions[ext]:
		return CategoryVideo
	case AudioExtensions[ext]:
		return CategoryAudio
	case DocumentExtensions[ext]:
		return CategoryDocument
	case ProjectExtensions[ext]:
		return CategoryProject
	}
	return CategoryUnknown
}

// Allowed reports whether files of the given category should be ingested.
// Unknown files are never ingested; project files require the opt-in flag.
func Allowed(cat Category, scanProjects bool) bool {
	switch cat {
	case CategoryUnknown:
		return false
	case CategoryProject:
		return scanProjects
	}
	return true
}

// MimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func MimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
