package service

import (
	"regexp"
	"strings"

	"spacetwo/asset-api/internal/model"
)

var (
	unsafeSegmentChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	underscoreRuns     = regexp.MustCompile(`_+`)
)

// SanitizeSegment turns a free text name into a lower case path segment made
// of [a-z0-9_-] only. Applying it twice yields the same result.
func SanitizeSegment(s string) string {
	s = strings.ToLower(s)
	s = unsafeSegmentChars.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Extension returns the part of the file name after the last dot, or an
// empty string when there is none.
func Extension(fileName string) string {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 || i == len(fileName)-1 {
		return ""
	}

	return fileName[i+1:]
}

// NormalizeMime maps device native video containers that the blob store
// refuses onto video/mp4. The same value must be used for negotiation and
// for the stored record.
func NormalizeMime(mime string) string {
	switch mime {
	case "video/quicktime", "video/x-msvideo":
		return "video/mp4"
	default:
		return mime
	}
}

// Classify maps a mime type to a coarse file type. First match wins.
func Classify(mime string) model.FileType {
	switch {
	case strings.HasPrefix(mime, "video/"):
		return model.FileTypeVideo
	case strings.HasPrefix(mime, "image/"):
		return model.FileTypeImage
	case strings.Contains(mime, "gif"), strings.Contains(mime, "webp"):
		return model.FileTypeAnimation
	default:
		return model.FileTypeDesign
	}
}

// ObjectPath builds {projectID}/{collection}/{fileID}[.ext].
func ObjectPath(projectID, collectionName, fileID, fileName string) string {
	name := fileID
	if ext := Extension(fileName); ext != "" {
		name += "." + ext
	}

	return projectID + "/" + SanitizeSegment(collectionName) + "/" + name
}
