package utils

import "strings"

// GetFileExtensionFromContentType maps a MIME type to the file extension used in storage keys.
func GetFileExtensionFromContentType(contentType string) string {
	contentType = strings.ToLower(contentType)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	switch {
	case strings.Contains(contentType, "jpeg") || strings.Contains(contentType, "jpg"):
		return "jpg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "svg"):
		return "svg"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	case strings.Contains(contentType, "x-icon") || strings.Contains(contentType, "vnd.microsoft.icon"):
		return "ico"
	case strings.Contains(contentType, "pdf"):
		return "pdf"
	case strings.Contains(contentType, "wordprocessingml") || strings.Contains(contentType, "msword"):
		return "docx"
	case strings.Contains(contentType, "spreadsheetml") || strings.Contains(contentType, "ms-excel"):
		return "xlsx"
	case strings.Contains(contentType, "text/csv"):
		return "csv"
	case strings.Contains(contentType, "text/plain"):
		return "txt"
	default:
		return "bin"
	}
}
