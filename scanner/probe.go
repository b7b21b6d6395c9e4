package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"os/exec"

	"github.com/davecgh/go-spew/spew"
	"github.com/tc-mccarthy/torrent-docker-rig-sub001/common/models"
)

/*
*
helper function to run the given command and capture output
*/
func RunCommand(cmd *exec.Cmd) ([]byte, []byte, error) {
	outPipe, _ := cmd.StdoutPipe()
	errPipe, _ := cmd.StderrPipe()

	startErr := cmd.Start()
	if startErr != nil {
		log.Print("Could not start command: ", startErr)
		return nil, nil, startErr
	}

	outContent, _ := ioutil.ReadAll(outPipe)
	errContent, _ := ioutil.ReadAll(errPipe)

	completeErr := cmd.Wait()
	if completeErr != nil {
		exitErr, isExitError := completeErr.(*exec.ExitError)
		if isExitError {
			log.Printf("Subprocess exited with an error: \n%s\n%s", exitErr.Stderr, errContent)
			return outContent, errContent, completeErr
		}
		log.Print("Could not run subprocess: ", completeErr)
		return outContent, errContent, completeErr
	}

	return outContent, errContent, nil
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int32  `json:"width"`
	Height    int32  `json:"height"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

/*
*
extract the width and aspect ratio of the first video stream from ffprobe
json output
*/
func ParseProbeOutput(content []byte) (*models.StreamDescriptor, error) {
	var parsed probeOutput
	unmarshalErr := json.Unmarshal(content, &parsed)
	if unmarshalErr != nil {
		log.Print("Offending content was ", string(content))
		return nil, fmt.Errorf("could not understand probe output: %s", unmarshalErr)
	}

	for _, stream := range parsed.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if stream.Height == 0 {
			return nil, fmt.Errorf("video stream reports zero height")
		}
		return &models.StreamDescriptor{
			Width:  stream.Width,
			Aspect: float64(stream.Width) / float64(stream.Height),
		}, nil
	}
	return nil, fmt.Errorf("no video stream present")
}

/*
*
run ffprobe against the given file and build a stream descriptor from the
first video stream. errors carry the command and the reason so the caller
can decide whether to retry or skip the file.
*/
func ProbeFile(fileName string) (*models.StreamDescriptor, error) {
	cmd := exec.Command("ffprobe", "-of", "json", "-show_streams", fileName)

	outContent, _, runErr := RunCommand(cmd)
	if runErr != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %s", fileName, runErr)
	}

	descriptor, parseErr := ParseProbeOutput(outContent)
	if parseErr != nil {
		log.Printf("DEBUG: probe output for %s was: %s", fileName, spew.Sdump(string(outContent)))
		return nil, fmt.Errorf("ffprobe output for %s: %s", fileName, parseErr)
	}
	return descriptor, nil
}
