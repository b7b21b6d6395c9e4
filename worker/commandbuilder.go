package main

import (
	"fmt"
	"path"
	"regexp"

	"github.com/tc-mccarthy/torrent-docker-rig-sub001/common/models"
)

var fileExtensionMatcher = regexp.MustCompile("^(.*)\\.([^.]*)$")

func RemoveExtension(from string) string {
	result := fileExtensionMatcher.FindAllStringSubmatch(from, -1)
	if result == nil {
		return from
	}
	return result[0][1]
}

/*
*
derive the output filename for a transcode: the source basename with the
tier name appended, placed in the scratch directory
*/
func OutputFilename(scratchPath string, sourcePath string, tierName string) string {
	baseName := path.Base(RemoveExtension(sourcePath))
	return path.Join(scratchPath, fmt.Sprintf("%s_%s.mkv", baseName, tierName))
}

/*
*
build the complete encoder argument vector for one resolved specification.
the vector covers input, video codec/bitrate/flags, the scale filter for the
tier's output width, audio codec and per-channel bitrate, and the derived
stereo track when the template asks for a downmix. running the encoder is
the caller's concern; this only computes what to pass to it.
*/
func BuildCommandArgs(spec *models.ResolvedEncodingSpec, sourcePath string, outputPath string) []string {
	args := []string{"-i", sourcePath}

	args = append(args, spec.Template.Video.MarshalToArray()...)

	//scale to the tier's output width, height follows the source aspect
	args = append(args, "-vf", fmt.Sprintf("scale=%d:-2", spec.DestWidth))

	if spec.Template.Audio.Downmix {
		//keep the original channel layout on track 0 and derive a stereo track beside it
		args = append(args,
			"-map", "0:v:0",
			"-map", "0:a:0",
			"-map", "0:a:0",
			"-ac:a:1", "2",
		)
	}

	args = append(args, spec.Template.Audio.MarshalToArray()...)
	args = append(args, "-y", outputPath)
	return args
}
