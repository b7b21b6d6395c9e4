package models

import (
	"fmt"
	"math"
)

/*
*
one named resolution/quality bracket in the profile table. the Output pointer
is nil on an authored tier; BuildProfileTable binds it.
*/
type ProfileTier struct {
	Name       string          `json:"name" yaml:"name"`
	Width      int32           `json:"width" yaml:"width"`           //minimum source frame width this tier targets
	DestWidth  int32           `json:"dest_width" yaml:"dest_width"` //optional output width override. 0 means "same as Width".
	Aspect     float64         `json:"aspect" yaml:"aspect"`         //canonicalized to one decimal place by the builder
	Bitrate    int64           `json:"bitrate" yaml:"bitrate"`       //target video bitrate in Mbit/sec
	CRF        int32           `json:"crf" yaml:"crf"`
	OutputName string          `json:"output" yaml:"output"`
	Default    bool            `json:"default" yaml:"default"`
	Output     *OutputTemplate `json:"-" yaml:"-"`
}

/*
*
the width a transcode for this tier should scale to
*/
func (t ProfileTier) OutputWidth() int32 {
	if t.DestWidth != 0 {
		return t.DestWidth
	}
	return t.Width
}

/*
*
ephemeral description of one source video, as reported by the media
inspection step. Aspect is width divided by height.
*/
type StreamDescriptor struct {
	Width  int32   `json:"width"`
	Aspect float64 `json:"aspect"`
}

type MalformedStreamDescriptorError struct {
	Detail string
}

func (e MalformedStreamDescriptorError) Error() string {
	return fmt.Sprintf("malformed stream descriptor: %s", e.Detail)
}

/*
*
reject descriptors that could not have come from a real measurement before
any matching is attempted
*/
func (s StreamDescriptor) Validate() error {
	if s.Width <= 0 {
		return MalformedStreamDescriptorError{Detail: fmt.Sprintf("width %d is not positive", s.Width)}
	}
	if math.IsNaN(s.Aspect) || math.IsInf(s.Aspect, 0) {
		return MalformedStreamDescriptorError{Detail: "aspect ratio is not a number"}
	}
	if s.Aspect == 0 {
		return MalformedStreamDescriptorError{Detail: "aspect ratio is zero"}
	}
	return nil
}

/*
*
round an aspect ratio to one decimal place. aspect ratios arrive as floating
point divisions (e.g. 16/9), so both authored and measured values are
canonicalized the same way before they are ever compared.
*/
func CanonicalAspect(aspect float64) float64 {
	return math.Round(aspect*10) / 10
}
