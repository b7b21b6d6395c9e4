package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
)

// encoder flag names that the builder and resolver write themselves
const (
	FLAG_CRF    = "crf"
	FLAG_PRESET = "preset"
)

type VideoSettings struct {
	Codec     string            `json:"codec" yaml:"codec"`
	CodecName string            `json:"codecname" yaml:"codecname"`
	Flags     map[string]string `json:"flags" yaml:"flags"`     //includes the quality (crf) and speed (preset) parameters
	Bitrate   int64             `json:"bitrate" yaml:"bitrate"` //in Mbit/sec. Filled in per-tier by the table builder, not authored on the template.
}

type AudioSettings struct {
	Codec             string `json:"codec" yaml:"codec"`
	CodecName         string `json:"codecname" yaml:"codecname"`
	BitratePerChannel int64  `json:"bitrateperchannel" yaml:"bitrateperchannel"` //in bits/sec
	Downmix           bool   `json:"downmix" yaml:"downmix"`                     //if set, derive an extra stereo track alongside the original channels
}

type OutputTemplate struct {
	Name  string        `json:"name" yaml:"name"`
	Video VideoSettings `json:"video" yaml:"video"`
	Audio AudioSettings `json:"audio" yaml:"audio"`
}

/*
*
produce a structurally independent copy of the template.
*/
func (t OutputTemplate) DeepCopy() OutputTemplate {
	var out OutputTemplate
	copier.Copy(&out, &t)

	//copier assigns map fields by reference, so the flag map needs its own storage
	out.Video.Flags = make(map[string]string, len(t.Video.Flags))
	for k, v := range t.Video.Flags {
		out.Video.Flags[k] = v
	}
	return out
}

func (v VideoSettings) MarshalToArray() []string {
	out := []string{
		"-c:v",
		v.Codec,
		"-b:v",
		fmt.Sprintf("%dM", v.Bitrate),
	}

	//flags go out in a stable order so the same settings always produce the same command line
	flagNames := make([]string, 0, len(v.Flags))
	for name := range v.Flags {
		flagNames = append(flagNames, name)
	}
	sort.Strings(flagNames)

	for _, name := range flagNames {
		out = append(out, "-"+name, v.Flags[name])
	}
	return out
}

func (v VideoSettings) MarshalToString() string {
	return strings.Join(v.MarshalToArray(), " ")
}

func (a AudioSettings) MarshalToArray() []string {
	return []string{
		"-c:a",
		a.Codec,
		"-b:a",
		strconv.FormatInt(a.BitratePerChannel, 10),
	}
}

func (a AudioSettings) MarshalToString() string {
	return strings.Join(a.MarshalToArray(), " ")
}
