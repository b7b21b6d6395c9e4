package models

import (
	"errors"
	"testing"
)

func TestBuildProfileTableBindsTemplates(t *testing.T) {
	table, buildErr := BuildProfileTable(testTiers(), testTemplates())
	if buildErr != nil {
		t.Error("build failed unexpectedly: ", buildErr)
		t.FailNow()
	}

	if len(table.Tiers) != 5 {
		t.Errorf("expected 5 built tiers, got %d", len(table.Tiers))
	}

	for _, tier := range table.Tiers {
		if tier.Output == nil {
			t.Errorf("tier '%s' has no bound output template", tier.Name)
			continue
		}
		if tier.Output.Video.Bitrate != tier.Bitrate {
			t.Errorf("tier '%s' bound template has bitrate %d, expected the tier's own %d",
				tier.Name, tier.Output.Video.Bitrate, tier.Bitrate)
		}
	}
}

func TestBuildProfileTableAspectCanonicalized(t *testing.T) {
	table := mustBuildTestTable()

	//1.78 authored aspect rounds to 1.8, 0.56 to 0.6
	if table.TierForName("uhd").Aspect != 1.8 {
		t.Errorf("uhd aspect not canonicalized, got %f", table.TierForName("uhd").Aspect)
	}
	if table.TierForName("vertical").Aspect != 0.6 {
		t.Errorf("vertical aspect not canonicalized, got %f", table.TierForName("vertical").Aspect)
	}
}

/*
*
uhd and 1080p both name the av1 template; each built tier must keep its own
bitrate rather than sharing the last write
*/
func TestBuildProfileTableSharedTemplateIsolation(t *testing.T) {
	table := mustBuildTestTable()

	uhd := table.TierForName("uhd")
	fullHd := table.TierForName("1080p")

	if uhd.Output.Video.Bitrate != 10 {
		t.Errorf("uhd bitrate overwritten, got %d expected 10", uhd.Output.Video.Bitrate)
	}
	if fullHd.Output.Video.Bitrate != 8 {
		t.Errorf("1080p bitrate overwritten, got %d expected 8", fullHd.Output.Video.Bitrate)
	}

	//the two bound templates must not share flag storage either
	uhd.Output.Video.Flags["preset"] = "13"
	if fullHd.Output.Video.Flags["preset"] != "5" {
		t.Error("bound templates share a flag map between tiers")
	}
}

func TestBuildProfileTableUnknownOutputFallsBack(t *testing.T) {
	tiers := []ProfileTier{
		{Name: "1080p", Width: 1920, Aspect: 1.78, Bitrate: 8, CRF: 30, OutputName: "prores"},
	}

	table, buildErr := BuildProfileTable(tiers, testTemplates())
	if buildErr != nil {
		t.Error("build failed unexpectedly: ", buildErr)
		t.FailNow()
	}

	if table.Tiers[0].Output.Name != DefaultTemplateName {
		t.Errorf("expected fallback to '%s' template, got '%s'", DefaultTemplateName, table.Tiers[0].Output.Name)
	}
}

func TestBuildProfileTableNoFallbackAvailable(t *testing.T) {
	tiers := []ProfileTier{
		{Name: "1080p", Width: 1920, Aspect: 1.78, Bitrate: 8, CRF: 30, OutputName: "prores"},
	}
	templates := map[string]OutputTemplate{
		"h264": testTemplates()["h264"],
	}

	_, buildErr := BuildProfileTable(tiers, templates)
	if buildErr == nil {
		t.Error("expected a configuration error when neither the named nor the default template exists")
	}
	var confErr ConfigurationError
	if !errors.As(buildErr, &confErr) {
		t.Errorf("expected ConfigurationError, got %T", buildErr)
	}
}

func TestBuildProfileTableDuplicateNames(t *testing.T) {
	tiers := []ProfileTier{
		{Name: "1080p", Width: 1920, Aspect: 1.78, Bitrate: 8, CRF: 30, OutputName: "av1"},
		{Name: "1080p", Width: 1280, Aspect: 1.78, Bitrate: 6, CRF: 28, OutputName: "av1"},
	}

	_, buildErr := BuildProfileTable(tiers, testTemplates())
	var confErr ConfigurationError
	if !errors.As(buildErr, &confErr) {
		t.Errorf("expected ConfigurationError for duplicate tier names, got %v", buildErr)
	}
}

func TestBuildProfileTableMultipleDefaults(t *testing.T) {
	tiers := []ProfileTier{
		{Name: "1080p", Width: 1920, Aspect: 1.78, Bitrate: 8, CRF: 30, OutputName: "av1", Default: true},
		{Name: "sd", Width: 640, Aspect: 1.3, Bitrate: 2, CRF: 28, OutputName: "av1", Default: true},
	}

	_, buildErr := BuildProfileTable(tiers, testTemplates())
	var confErr ConfigurationError
	if !errors.As(buildErr, &confErr) {
		t.Errorf("expected ConfigurationError for two default tiers, got %v", buildErr)
	}
}

func TestBuildProfileTableDoesNotMutateInput(t *testing.T) {
	rawTiers := testTiers()
	_, buildErr := BuildProfileTable(rawTiers, testTemplates())
	if buildErr != nil {
		t.Error("build failed unexpectedly: ", buildErr)
		t.FailNow()
	}

	//the authored list keeps its raw aspect and stays unbound
	if rawTiers[0].Aspect != 1.78 {
		t.Errorf("builder mutated the authored tier list, aspect became %f", rawTiers[0].Aspect)
	}
	if rawTiers[0].Output != nil {
		t.Error("builder bound a template onto the authored tier list")
	}
}
