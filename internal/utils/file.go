package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// imageExts lists the extensions the codec can decode
var imageExts = []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// GetFileExtension returns the lower-cased file extension without the dot
func GetFileExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// IsImageFile checks if a file has a decodable image extension
func IsImageFile(filename string) bool {
	return slices.Contains(imageExts, GetFileExtension(filename))
}

// OutputPath joins dir and name, replacing the extension of name with ext
func OutputPath(dir, name, ext string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return filepath.Join(dir, fmt.Sprintf("%s.%s", SanitizeFilename(base), strings.TrimPrefix(ext, ".")))
}

// ListImageFiles lists the image files directly inside dir in lexical order
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsImageFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// ExpandImageArgs resolves a mix of file and directory arguments into an
// ordered list of image files. Directories contribute their image files in
// lexical order; files are kept in argument order.
func ExpandImageArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if DirExists(arg) {
			found, err := ListImageFiles(arg)
			if err != nil {
				return nil, fmt.Errorf("list %s: %w", arg, err)
			}
			files = append(files, found...)
			continue
		}
		if !FileExists(arg) {
			return nil, fmt.Errorf("%s: no such file", arg)
		}
		files = append(files, arg)
	}
	return files, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SanitizeFilename replaces characters that are invalid in file names
func SanitizeFilename(filename string) string {
	result := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, filename)

	return strings.Trim(result, " .")
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
