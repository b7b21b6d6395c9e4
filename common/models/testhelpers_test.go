package models

/*
*
fixture data shared by the tests in this package. the ladder mirrors the
shipped sample configuration: ordered most specific first, sd is the
fallback tier, uhd and 1080p share the av1 template.
*/
func testTemplates() map[string]OutputTemplate {
	return map[string]OutputTemplate{
		"av1": {
			Name: "av1",
			Video: VideoSettings{
				Codec:     "libsvtav1",
				CodecName: "AV1 (SVT)",
				Flags: map[string]string{
					FLAG_CRF:    "30",
					FLAG_PRESET: "5",
				},
			},
			Audio: AudioSettings{
				Codec:             "libopus",
				CodecName:         "Opus",
				BitratePerChannel: 64000,
				Downmix:           true,
			},
		},
		"h264": {
			Name: "h264",
			Video: VideoSettings{
				Codec:     "libx264",
				CodecName: "H.264 (x264)",
				Flags: map[string]string{
					FLAG_CRF:    "23",
					FLAG_PRESET: "veryfast",
				},
			},
			Audio: AudioSettings{
				Codec:             "aac",
				CodecName:         "AAC",
				BitratePerChannel: 96000,
				Downmix:           false,
			},
		},
	}
}

func testTiers() []ProfileTier {
	return []ProfileTier{
		{Name: "uhd", Width: 3840, Aspect: 1.78, Bitrate: 10, CRF: 35, OutputName: "av1"},
		{Name: "1080p", Width: 1920, Aspect: 1.78, Bitrate: 8, CRF: 30, OutputName: "av1"},
		{Name: "720p", Width: 1280, Aspect: 1.78, Bitrate: 6, CRF: 28, OutputName: "h264"},
		{Name: "vertical", Width: 1080, DestWidth: 1080, Aspect: 0.56, Bitrate: 12, CRF: 30, OutputName: "av1"},
		{Name: "sd", Width: 640, Aspect: 1.3, Bitrate: 2, CRF: 28, OutputName: "h264", Default: true},
	}
}

func mustBuildTestTable() *ProfileTable {
	table, buildErr := BuildProfileTable(testTiers(), testTemplates())
	if buildErr != nil {
		panic(buildErr)
	}
	return table
}
