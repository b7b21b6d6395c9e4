package models

import (
	"errors"
	"gopkg.in/yaml.v2"
	"io/ioutil"
	"log"
)

/*
*
the authored on-disk shape of the profile configuration: a list of named
output templates and the ordered ladder of tiers referencing them
*/
type ProfileFile struct {
	Outputs []OutputTemplate `yaml:"outputs"`
	Tiers   []ProfileTier    `yaml:"tiers"`
}

/*
*
read an authored profile file and normalize it into a ready-to-use table.
any problem here is a startup configuration failure; callers should abort
rather than continue without a table.
*/
func LoadProfileTable(fileName string) (*ProfileTable, error) {
	fileContent, readErr := ioutil.ReadFile(fileName)
	if readErr != nil {
		log.Printf("Could not read profiles from '%s': %s", fileName, readErr)
		return nil, readErr
	}

	var profileFile ProfileFile
	extractErr := yaml.Unmarshal(fileContent, &profileFile)
	if extractErr != nil {
		log.Printf("Could not understand profiles from '%s': %s", fileName, extractErr)
		return nil, extractErr
	}

	if len(profileFile.Tiers) == 0 {
		return nil, errors.New("profile file defines no tiers")
	}

	templates := make(map[string]OutputTemplate, len(profileFile.Outputs))
	for _, template := range profileFile.Outputs {
		if template.Name == "" {
			return nil, ConfigurationError{Detail: "output template with no name"}
		}
		if _, exists := templates[template.Name]; exists {
			return nil, ConfigurationError{Detail: "output template '" + template.Name + "' appears more than once"}
		}
		templates[template.Name] = template
	}

	table, buildErr := BuildProfileTable(profileFile.Tiers, templates)
	if buildErr != nil {
		return nil, buildErr
	}

	log.Printf("Loaded %d profile tiers and %d output templates from %s", len(table.Tiers), len(templates), fileName)
	return table, nil
}
