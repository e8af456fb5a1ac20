package upload

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ExtensionPlaceholder is replaced by the original file extension in filename patterns.
const ExtensionPlaceholder = "%s"

// Stem: letters of any script, digits, spaces, "-", "_", ".", "(", ")".
var extensionPattern = regexp.MustCompile(`^[\p{L}\p{N}\s\-_.()]*\.([\p{L}\p{N}_]+)$`)

// Extension returns the extension of a client filename without the leading dot,
// or "" when the name does not match the accepted shape. The name is NFC
// normalized first, so decomposed accents are accepted.
//
//	Extension("résumé.docx")    // "docx"
//	Extension("archive.tar.gz") // "gz"
//	Extension("README")         // ""
func Extension(name string) string {
	m := extensionPattern.FindStringSubmatch(norm.NFC.String(name))
	if m == nil {
		return ""
	}
	return m[1]
}

// ApplyPattern replaces every ExtensionPlaceholder in pattern with ext.
func ApplyPattern(pattern, ext string) string {
	return strings.ReplaceAll(pattern, ExtensionPlaceholder, ext)
}

// AutoFilename returns a pattern shaped "<random-hash><unix-timestamp>.%s".
func AutoFilename(now time.Time) string {
	sum := sha1.Sum([]byte(uuid.NewString() + strconv.FormatInt(now.UnixNano(), 10)))
	return hex.EncodeToString(sum[:]) + strconv.FormatInt(now.Unix(), 10) + "." + ExtensionPlaceholder
}

// SanitizeFilename strips path components and NUL bytes from a client filename.
// Returns "unnamed" when nothing usable is left.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\x00", "")

	if name == "." || name == ".." || name == "" || name == "/" {
		return "unnamed"
	}
	return name
}

func isValidFilename(name string) bool {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
