package mimepolicy

// Built-in preset names.
const (
	PresetText     = "text"
	PresetImage    = "image"
	PresetDocument = "document"
	PresetVideo    = "video"
)

// DefaultPresets returns a fresh copy of the built-in presets.
func DefaultPresets() map[string][]string {
	return map[string][]string{
		PresetText: {
			"text/plain",
		},
		PresetImage: {
			"image/jpeg",
			"image/jpg",
			"image/pjpeg",
			"image/png",
			"image/gif",
		},
		PresetDocument: {
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"application/vnd.ms-powerpoint",
			"application/vnd.ms-excel",
			"application/vnd.oasis.opendocument.spreadsheet",
			"application/vnd.oasis.opendocument.presentation",
		},
		PresetVideo: {
			"video/3gpp",
			"video/x-msvideo",
			"video/avi",
			"video/mpeg4",
			"video/mp4",
			"video/mpeg",
			"video/mpg",
			"video/quicktime",
			"video/x-sgi-movie",
			"video/x-ms-wmv",
			"video/x-flv",
		},
	}
}
