package helpers

import (
	"io/ioutil"
	"os"
	"path"
	"testing"
)

const sampleConfigYaml = `redis:
  address: localhost:6379
  password: ""
  dbNum: 0
scratch:
  localpath: /mnt/scratch
  usagelimitpct: 85.0
mediapaths:
  - /media/source
profilepath: config/profiles.yaml
encode_version: v4
concurrent_file_checks: 3
extravideoflags:
  pix_fmt: yuv420p10le
`

func writeTempConfig(t *testing.T, content string) string {
	dirName, tmpErr := ioutil.TempDir("", "configtest")
	if tmpErr != nil {
		panic(tmpErr)
	}
	t.Cleanup(func() { os.RemoveAll(dirName) })

	fileName := path.Join(dirName, "serverconfig.yaml")
	writeErr := ioutil.WriteFile(fileName, []byte(content), 0644)
	if writeErr != nil {
		panic(writeErr)
	}
	return fileName
}

func TestReadConfig(t *testing.T) {
	fileName := writeTempConfig(t, sampleConfigYaml)

	conf, readErr := ReadConfig(fileName)
	if readErr != nil {
		t.Error("ReadConfig failed unexpectedly: ", readErr)
		t.FailNow()
	}

	if conf.Redis.Address != "localhost:6379" {
		t.Errorf("wrong redis address '%s'", conf.Redis.Address)
	}
	if conf.EncodeVersion != "v4" {
		t.Errorf("wrong encode version '%s'", conf.EncodeVersion)
	}
	if conf.ConcurrentFileChecks != 3 {
		t.Errorf("wrong concurrent file checks %d", conf.ConcurrentFileChecks)
	}
	if conf.Scratch.UsageLimitPct != 85.0 {
		t.Errorf("wrong scratch usage limit %f", conf.Scratch.UsageLimitPct)
	}
	if len(conf.MediaPaths) != 1 || conf.MediaPaths[0] != "/media/source" {
		t.Errorf("wrong media paths %v", conf.MediaPaths)
	}
	if conf.ExtraVideoFlags["pix_fmt"] != "yuv420p10le" {
		t.Error("extra video flags not read")
	}
}

func TestReadConfigDefaults(t *testing.T) {
	fileName := writeTempConfig(t, "encode_version: v4\n")

	conf, readErr := ReadConfig(fileName)
	if readErr != nil {
		t.Error("ReadConfig failed unexpectedly: ", readErr)
		t.FailNow()
	}
	if conf.ConcurrentFileChecks != 2 {
		t.Errorf("expected default concurrent file checks of 2, got %d", conf.ConcurrentFileChecks)
	}
	if conf.Scratch.UsageLimitPct != 90.0 {
		t.Errorf("expected default scratch usage limit of 90, got %f", conf.Scratch.UsageLimitPct)
	}
}

func TestReadConfigMissingEncodeVersion(t *testing.T) {
	fileName := writeTempConfig(t, "concurrent_file_checks: 2\n")

	_, readErr := ReadConfig(fileName)
	if readErr == nil {
		t.Error("expected an error when encode_version is missing")
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	_, readErr := ReadConfig("/path/that/does/not/exist.yaml")
	if readErr == nil {
		t.Error("expected an error for a missing config file")
	}
}
