package helpers

import (
	"log"
	"mime"
	"regexp"
	"strings"
	"sync"

	"github.com/h2non/filetype"
)

type SourceItemType string

const (
	ITEM_TYPE_VIDEO SourceItemType = "video"
	ITEM_TYPE_AUDIO SourceItemType = "audio"
	ITEM_TYPE_IMAGE SourceItemType = "image"
	ITEM_TYPE_OTHER SourceItemType = "other"
)

var FileExtensionExtractor = regexp.MustCompile("(\\.[^\\.]+)$")
var once sync.Once

func itemTypeForMime(mimeType string) SourceItemType {
	if strings.HasPrefix(mimeType, "video/") {
		return ITEM_TYPE_VIDEO
	} else if strings.HasPrefix(mimeType, "audio/") {
		return ITEM_TYPE_AUDIO
	} else if strings.HasPrefix(mimeType, "image/") {
		return ITEM_TYPE_IMAGE
	} else {
		return ITEM_TYPE_OTHER
	}
}

/*
*
determine the item type from the file extension alone. this does not touch
the filesystem so it can be used in tests and on paths that don't exist yet.
*/
func ItemTypeForFilepath(filepath string) SourceItemType {
	once.Do(func() {
		//the builtin table is tiny and /etc/mime.types is not guaranteed,
		//so register the container formats we actually meet
		mime.AddExtensionType(".mxf", "video/x-material-exchange-format")
		mime.AddExtensionType(".mts", "video/x-mpeg-transport-stream")
		mime.AddExtensionType(".mkv", "video/x-matroska")
		mime.AddExtensionType(".mp4", "video/mp4")
		mime.AddExtensionType(".m4v", "video/mp4")
		mime.AddExtensionType(".mov", "video/quicktime")
		mime.AddExtensionType(".avi", "video/x-msvideo")
		mime.AddExtensionType(".webm", "video/webm")
		mime.AddExtensionType(".mp3", "audio/mpeg")
		mime.AddExtensionType(".flac", "audio/flac")
	})

	matches := FileExtensionExtractor.FindStringSubmatch(filepath)
	if matches == nil {
		return ITEM_TYPE_OTHER
	}
	return itemTypeForMime(mime.TypeByExtension(matches[1]))
}

/*
*
determine the item type by sniffing the file content, falling back to the
extension if the content can't be matched
*/
func ItemTypeForFile(filepath string) SourceItemType {
	fileTypeInfo, ftErr := filetype.MatchFile(filepath)
	if ftErr != nil {
		log.Printf("Could not determine type for %s: %s", filepath, ftErr)
		return ItemTypeForFilepath(filepath)
	}
	if fileTypeInfo.MIME.Value == "" {
		return ItemTypeForFilepath(filepath)
	}
	return itemTypeForMime(fileTypeInfo.MIME.Value)
}
