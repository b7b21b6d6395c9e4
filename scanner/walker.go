package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tc-mccarthy/torrent-docker-rig-sub001/common/helpers"
)

/*
*
walk the given media path and send every transcodable video file onto the
output channel. dotfiles and non-video content are skipped. the channel is
not closed here so several paths can feed the same channel.
*/
func ScanMediaPath(mediaPath string, foundFiles chan<- string) error {
	return filepath.Walk(mediaPath, func(currentPath string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			log.Printf("WARNING: Could not read %s: %s", currentPath, walkErr)
			return nil //keep walking the rest of the tree
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && currentPath != mediaPath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		if helpers.ItemTypeForFile(currentPath) != helpers.ITEM_TYPE_VIDEO {
			return nil
		}

		foundFiles <- currentPath
		return nil
	})
}
