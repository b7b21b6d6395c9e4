package models

import (
	"fmt"
	"log"

	mapset "github.com/deckarep/golang-set"
)

// tiers that name no output template, or name one that does not exist, are
// bound to this template instead
const DefaultTemplateName = "av1"

type ConfigurationError struct {
	Detail string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("profile configuration error: %s", e.Detail)
}

/*
*
an ordered sequence of built profile tiers. order is match priority: the
resolver takes the first tier that matches, so tables must be authored from
most specific to least specific.
*/
type ProfileTable struct {
	Tiers []ProfileTier
}

/*
*
normalize the authored tier list into a ready-to-use profile table.

for each tier this resolves the named output template (falling back to the
canonical default template), canonicalizes the aspect ratio to one decimal
place and binds a deep copy of the template with the tier's own bitrate
written into the video section. the copy matters: several tiers may name the
same template, and writing the bitrate onto the shared value would let the
last-built tier overwrite every other one.

intended to run exactly once at startup. any violation of the table
invariants (duplicate tier names, more than one default tier, unresolvable
output template) is a ConfigurationError and no table is returned.
*/
func BuildProfileTable(rawTiers []ProfileTier, templates map[string]OutputTemplate) (*ProfileTable, error) {
	seenNames := mapset.NewSet()
	defaultCount := 0

	built := make([]ProfileTier, len(rawTiers))

	for i, rawTier := range rawTiers {
		if rawTier.Name == "" {
			return nil, ConfigurationError{Detail: fmt.Sprintf("tier at position %d has no name", i)}
		}
		if !seenNames.Add(rawTier.Name) {
			return nil, ConfigurationError{Detail: fmt.Sprintf("tier name '%s' appears more than once", rawTier.Name)}
		}
		if rawTier.Default {
			defaultCount += 1
		}

		template, haveTemplate := templates[rawTier.OutputName]
		if !haveTemplate {
			if rawTier.OutputName != "" {
				log.Printf("WARNING: tier '%s' wants output template '%s' which is not defined, using '%s'",
					rawTier.Name, rawTier.OutputName, DefaultTemplateName)
			}
			template, haveTemplate = templates[DefaultTemplateName]
			if !haveTemplate {
				return nil, ConfigurationError{
					Detail: fmt.Sprintf("no output template for tier '%s' and no '%s' template to fall back to",
						rawTier.Name, DefaultTemplateName),
				}
			}
		}

		tier := rawTier
		tier.Aspect = CanonicalAspect(rawTier.Aspect)

		boundTemplate := template.DeepCopy()
		boundTemplate.Video.Bitrate = tier.Bitrate
		tier.Output = &boundTemplate

		built[i] = tier
	}

	if defaultCount > 1 {
		return nil, ConfigurationError{Detail: fmt.Sprintf("%d tiers are marked default, at most one is allowed", defaultCount)}
	}

	return &ProfileTable{Tiers: built}, nil
}

/*
*
returns the tier flagged as the fallback, or nil if the table has none
*/
func (tbl *ProfileTable) DefaultTier() *ProfileTier {
	for i := range tbl.Tiers {
		if tbl.Tiers[i].Default {
			return &tbl.Tiers[i]
		}
	}
	return nil
}

/*
*
look up a tier by name, or nil if it is not present
*/
func (tbl *ProfileTable) TierForName(name string) *ProfileTier {
	for i := range tbl.Tiers {
		if tbl.Tiers[i].Name == name {
			return &tbl.Tiers[i]
		}
	}
	return nil
}
