package drive

import "strings"

// WebURL converts a Drive document id to a browser URL.
// Returns "" for ids that do not belong to this source.
func WebURL(id string) string {
	fileID, ok := strings.CutPrefix(id, IDPrefix)
	if !ok || fileID == "" {
		return ""
	}
	return "https://drive.google.com/file/d/" + fileID + "/view"
}
