package models

import (
	"fmt"
	"math"
	"strconv"
)

// sources whose width falls marginally under a round tier boundary still
// belong to that tier, so the width comparison carries a fixed margin.
// historical tables used margins between 10 and 50; this implementation
// fixes it at 50.
const WidthMatchTolerance = 50

type NoMatchingProfileError struct {
	Stream StreamDescriptor
}

func (e NoMatchingProfileError) Error() string {
	return fmt.Sprintf("no profile tier matches a source of width %d, aspect %.2f and the table has no default tier",
		e.Stream.Width, e.Stream.Aspect)
}

/*
*
the per-job output of profile resolution: a privately owned encoding
specification with the matched tier's bitrate and quality already applied.
callers may mutate it freely, it shares no storage with the profile table.
*/
type ResolvedEncodingSpec struct {
	TierName  string
	DestWidth int32
	Template  OutputTemplate
}

/*
*
merge additional encoder flags into the video flag map. existing keys given
again are overwritten, keys not mentioned are kept.
*/
func (s *ResolvedEncodingSpec) AddFlags(extra map[string]string) {
	for k, v := range extra {
		s.Template.Video.Flags[k] = v
	}
}

/*
*
match the given source stream against the table and derive its encoding
specification.

the scan is first-match in table order: a tier matches when the stream width
plus the fixed tolerance reaches the tier width AND the magnitude of the
stream aspect (canonicalized to one decimal place, aspect can arrive
negative from upstream measurement) reaches the tier aspect. if nothing
matches, the tier flagged default is used; a table with no default yields
NoMatchingProfileError.

the returned specification is a deep copy of the matched tier's bound
template with the tier bitrate and crf re-asserted on it. Resolve performs
no I/O and never mutates the table, so it is safe to call concurrently.
*/
func (tbl *ProfileTable) Resolve(stream StreamDescriptor) (*ResolvedEncodingSpec, error) {
	if validateErr := stream.Validate(); validateErr != nil {
		return nil, validateErr
	}

	streamAspect := CanonicalAspect(math.Abs(stream.Aspect))

	var matched *ProfileTier
	for i := range tbl.Tiers {
		tier := &tbl.Tiers[i]
		if stream.Width+WidthMatchTolerance >= tier.Width && streamAspect >= tier.Aspect {
			matched = tier
			break
		}
	}

	if matched == nil {
		matched = tbl.DefaultTier()
	}
	if matched == nil {
		return nil, NoMatchingProfileError{Stream: stream}
	}

	spec := ResolvedEncodingSpec{
		TierName:  matched.Name,
		DestWidth: matched.OutputWidth(),
		Template:  matched.Output.DeepCopy(),
	}

	//the bound template may carry values from an earlier build step, the
	//tier's own figures always win on the copy
	spec.Template.Video.Bitrate = matched.Bitrate
	spec.Template.Video.Flags[FLAG_CRF] = strconv.FormatInt(int64(matched.CRF), 10)

	return &spec, nil
}
