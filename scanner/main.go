package main

import (
	"errors"
	"flag"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"github.com/tc-mccarthy/torrent-docker-rig-sub001/common/helpers"
	"github.com/tc-mccarthy/torrent-docker-rig-sub001/common/models"
)

func SetupRedis(config *helpers.Config) (*redis.Client, error) {
	log.Printf("Connecting to Redis on %s", config.Redis.Address)
	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Address,
		Password: config.Redis.Password,
		DB:       config.Redis.DBNum,
	})

	_, err := client.Ping().Result()
	if err != nil {
		log.Printf("Could not contact Redis: %s", err)
		return nil, err
	}
	log.Printf("Done.")
	return client, nil
}

/*
*
decide how many files may be probed at once. the configured limit applies
normally; when the scratch volume is over its usage limit, scanning drops
to one file at a time. a failed disk query is advisory only and keeps the
configured limit.
*/
func EffectiveConcurrency(config *helpers.Config) int {
	if config.Scratch.LocalPath == "" {
		return config.ConcurrentFileChecks
	}

	usedPct, diskErr := helpers.DiskUsedPercent(config.Scratch.LocalPath)
	if diskErr != nil {
		log.Printf("WARNING: %s. Keeping concurrency at %d.", diskErr, config.ConcurrentFileChecks)
		return config.ConcurrentFileChecks
	}

	log.Printf("Scratch volume at %s is %.1f%% full", config.Scratch.LocalPath, usedPct)
	if usedPct >= config.Scratch.UsageLimitPct {
		log.Printf("WARNING: Scratch usage %.1f%% is over the %.1f%% limit, dropping to 1 concurrent file check",
			usedPct, config.Scratch.UsageLimitPct)
		return 1
	}
	return config.ConcurrentFileChecks
}

/*
*
probe one candidate file, resolve it against the profile table and enqueue
an encode request for it. files that already have a record at the current
encode version are skipped, as are files that fail probing or resolution.
returns true if a request was queued.
*/
func ProcessFile(fileName string, table *models.ProfileTable, config *helpers.Config, redisClient redis.Cmdable) bool {
	existing, lookupErr := models.EncodeRecordForPath(fileName, redisClient)
	if lookupErr != nil {
		log.Printf("ERROR: Could not check for an existing record for %s: %s", fileName, lookupErr)
		return false
	}
	if existing != nil && existing.EncodeVersion == config.EncodeVersion && existing.Status != models.ENCODE_FAILED {
		log.Printf("DEBUG: %s already recorded at version %s, skipping", fileName, config.EncodeVersion)
		return false
	}

	descriptor, probeErr := ProbeFile(fileName)
	if probeErr != nil {
		log.Printf("ERROR: Could not inspect %s: %s", fileName, probeErr)
		return false
	}

	spec, resolveErr := table.Resolve(*descriptor)
	if resolveErr != nil {
		var noMatch models.NoMatchingProfileError
		var malformed models.MalformedStreamDescriptorError
		if errors.As(resolveErr, &noMatch) || errors.As(resolveErr, &malformed) {
			//an operator needs the path to fix either the source or the table
			log.Printf("WARNING: Skipping %s: %s", fileName, resolveErr)
			return false
		}
		log.Printf("ERROR: Could not resolve a profile for %s: %s", fileName, resolveErr)
		return false
	}

	record := models.NewEncodeRecord(fileName, spec.TierName, config.EncodeVersion)
	saveErr := record.Save(redisClient)
	if saveErr != nil {
		log.Printf("ERROR: Could not save a record for %s: %s", fileName, saveErr)
		return false
	}

	rq := models.EncodeRequest{
		RequestId:     uuid.New(),
		SourcePath:    fileName,
		Stream:        *descriptor,
		TierName:      spec.TierName,
		EncodeVersion: config.EncodeVersion,
		QueuedAt:      time.Now(),
	}
	queueErr := models.AddToQueue(redisClient, models.PENDING_QUEUE, rq)
	if queueErr != nil {
		log.Printf("ERROR: Could not enqueue %s: %s", fileName, queueErr)
		record.MarkFailed(redisClient, queueErr.Error())
		return false
	}

	log.Printf("Queued %s as tier '%s'", fileName, spec.TierName)
	return true
}

func main() {
	configFilePtr := flag.String("config", "config/serverconfig.yaml", "path to the server config yaml")
	flag.Parse()

	config, configReadErr := helpers.ReadConfig(*configFilePtr)
	if configReadErr != nil {
		log.Fatal("No configuration, can't continue")
	}

	//a broken profile table must stop the scan before any files are touched
	table, tableErr := models.LoadProfileTable(config.ProfilePath)
	if tableErr != nil {
		log.Fatalf("Could not load the profile table: %s", tableErr)
	}

	redisClient, redisErr := SetupRedis(config)
	if redisErr != nil {
		log.Fatal("Could not connect to redis")
	}

	concurrency := EffectiveConcurrency(config)
	log.Printf("Scanning %d media paths with %d concurrent file checks, encode version %s",
		len(config.MediaPaths), concurrency, config.EncodeVersion)

	startTime := time.Now()

	foundFiles := make(chan string, 100)
	go func() {
		for _, mediaPath := range config.MediaPaths {
			walkErr := ScanMediaPath(mediaPath, foundFiles)
			if walkErr != nil {
				log.Printf("ERROR: Could not scan %s: %s", mediaPath, walkErr)
			}
		}
		close(foundFiles)
	}()

	var queuedCount, seenCount int64
	var countLock sync.Mutex
	waitGroup := sync.WaitGroup{}

	for i := 0; i < concurrency; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for fileName := range foundFiles {
				queued := ProcessFile(fileName, table, config, redisClient)
				countLock.Lock()
				seenCount += 1
				if queued {
					queuedCount += 1
				}
				countLock.Unlock()
			}
		}()
	}
	waitGroup.Wait()

	endTime := time.Now()
	log.Printf("Scan completed in %s: %d files inspected, %d queued",
		helpers.FormatSecondsToHHMMSS(endTime.Sub(startTime).Seconds()), seenCount, queuedCount)
}
