package main

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/tc-mccarthy/torrent-docker-rig-sub001/common/helpers"
)

func TestEffectiveConcurrencyNoScratch(t *testing.T) {
	config := helpers.Config{ConcurrentFileChecks: 4}

	if got := EffectiveConcurrency(&config); got != 4 {
		t.Errorf("expected the configured limit with no scratch path, got %d", got)
	}
}

func TestEffectiveConcurrencyOverLimit(t *testing.T) {
	dirName, tmpErr := ioutil.TempDir("", "concurrencytest")
	if tmpErr != nil {
		panic(tmpErr)
	}
	t.Cleanup(func() { os.RemoveAll(dirName) })

	//a limit of zero means any measured usage is over it
	config := helpers.Config{
		ConcurrentFileChecks: 4,
		Scratch:              helpers.ScratchStorage{LocalPath: dirName, UsageLimitPct: 0},
	}

	if got := EffectiveConcurrency(&config); got != 1 {
		t.Errorf("expected concurrency of 1 when the volume is over its limit, got %d", got)
	}
}

func TestEffectiveConcurrencyUnderLimit(t *testing.T) {
	dirName, tmpErr := ioutil.TempDir("", "concurrencytest")
	if tmpErr != nil {
		panic(tmpErr)
	}
	t.Cleanup(func() { os.RemoveAll(dirName) })

	//no real volume is over 100.1% full
	config := helpers.Config{
		ConcurrentFileChecks: 4,
		Scratch:              helpers.ScratchStorage{LocalPath: dirName, UsageLimitPct: 100.1},
	}

	if got := EffectiveConcurrency(&config); got != 4 {
		t.Errorf("expected the configured limit under the usage limit, got %d", got)
	}
}
