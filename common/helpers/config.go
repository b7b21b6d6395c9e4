package helpers

import (
	"errors"
	"gopkg.in/yaml.v2"
	"io/ioutil"
	"log"
)

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DBNum    int    `yaml:"dbNum"`
}

type ScratchStorage struct {
	LocalPath     string  `yaml:"localpath"`
	UsageLimitPct float64 `yaml:"usagelimitpct"` //above this used-space percentage, scanning drops to one file at a time
}

type Config struct {
	Redis                RedisConfig       `yaml:"redis"`
	Scratch              ScratchStorage    `yaml:"scratch"`
	MediaPaths           []string          `yaml:"mediapaths"`
	ProfilePath          string            `yaml:"profilepath"`
	EncodeVersion        string            `yaml:"encode_version"`
	ConcurrentFileChecks int               `yaml:"concurrent_file_checks"`
	ExtraVideoFlags      map[string]string `yaml:"extravideoflags"`
}

func ReadConfig(configFile string) (*Config, error) {
	configBytes, readErr := ioutil.ReadFile(configFile)
	if readErr != nil {
		log.Printf("Could not read config from '%s': %s\n", configFile, readErr)
		return nil, readErr
	}

	var conf Config

	err := yaml.Unmarshal(configBytes, &conf)
	if err != nil {
		log.Printf("Could not understand config from '%s': %s\n", configFile, err)
		return nil, err
	}

	validateErr := conf.Validate()
	if validateErr != nil {
		log.Printf("Config from '%s' is not valid: %s\n", configFile, validateErr)
		return nil, validateErr
	}
	return &conf, nil
}

/*
*
apply defaults and reject values that could not run
*/
func (c *Config) Validate() error {
	if c.ConcurrentFileChecks <= 0 {
		c.ConcurrentFileChecks = 2
	}
	if c.Scratch.UsageLimitPct == 0 {
		c.Scratch.UsageLimitPct = 90.0
	}
	if c.EncodeVersion == "" {
		return errors.New("encode_version must be set")
	}
	return nil
}
