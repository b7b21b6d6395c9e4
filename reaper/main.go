package main

import (
	"flag"
	"log"
	"time"

	"github.com/go-redis/redis/v7"
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
delete one record if it finished before the cutoff. returns true if it was
(or would have been) removed.
*/
func ProcessRecord(record *models.EncodeRecord, cutoffTime time.Time, dryRun bool, redisClient redis.Cmdable) bool {
	if record.Status != models.ENCODE_COMPLETED && record.Status != models.ENCODE_FAILED {
		return false
	}
	if record.CompletedAt == nil || !record.CompletedAt.Before(cutoffTime) {
		return false
	}

	log.Printf("Removing old record %s for %s", record.Id, record.SourcePath)
	if dryRun {
		return true
	}
	deleteErr := record.Delete(redisClient)
	if deleteErr != nil {
		log.Printf("ERROR: Could not delete record %s: %s", record.Id, deleteErr)
		return false
	}
	return true
}

/*
*
put running-queue entries whose consumer went away back onto the pending
queue. an entry is considered orphaned when its record is missing entirely
or has not moved past pending; a genuinely running record is left alone.
holds the running queue lock while working so a live consumer's completion
does not race the snapshot.
*/
func RequeueOrphans(redisClient *redis.Client, dryRun bool) {
	lockErr := models.WaitForQueueLock(redisClient, models.RUNNING_QUEUE, 10*time.Second)
	if lockErr != nil {
		log.Printf("ERROR: Could not obtain the running queue lock: %s", lockErr)
		return
	}
	models.SetQueueLock(redisClient, models.RUNNING_QUEUE)
	defer models.ReleaseQueueLock(redisClient, models.RUNNING_QUEUE)

	snapshot, snapErr := models.SnapshotQueue(redisClient, models.RUNNING_QUEUE)
	if snapErr != nil {
		log.Printf("ERROR: Could not snapshot the running queue: %s", snapErr)
		return
	}

	for _, entry := range snapshot {
		record, lookupErr := models.EncodeRecordForPath(entry.SourcePath, redisClient)
		if lookupErr != nil {
			log.Printf("ERROR: Could not look up the record for %s: %s", entry.SourcePath, lookupErr)
			continue
		}
		if record != nil && record.Status == models.ENCODE_RUNNING {
			continue
		}

		log.Printf("WARNING: Requeueing orphaned request %s for %s", entry.RequestId, entry.SourcePath)
		if dryRun {
			continue
		}
		requeueErr := models.RequeueRequest(redisClient, entry)
		if requeueErr != nil {
			log.Printf("ERROR: Could not requeue %s: %s", entry.RequestId, requeueErr)
		}
	}
}

func main() {
	maxAgeHours := flag.Int64("maxage", 36, "delete records for encodes that finished longer than this many hours ago")
	pageSize := flag.Int64("pagesize", 100, "pull this many records from the database at once")
	dryRun := flag.Bool("dryrun", true, "don't actually delete or requeue anything")
	configFilePtr := flag.String("config", "config/serverconfig.yaml", "path to the server config yaml")

	flag.Parse()

	config, configReadErr := helpers.ReadConfig(*configFilePtr)
	if configReadErr != nil {
		log.Fatal("No configuration, can't continue")
	}

	log.Printf("Dryrun is %t", *dryRun)
	redisClient, redisErr := SetupRedis(config)
	if redisErr != nil {
		log.Fatal("Could not connect to redis")
	}

	startTime := time.Now()
	cutoffTime := startTime.Add(-time.Duration(*maxAgeHours) * time.Hour)
	log.Printf("Reaping of records completed before %s starting at %s", cutoffTime, startTime)

	var removedCount int64
	var start int64 = 0
	for {
		records, listErr := models.ListEncodeRecords(start, start+*pageSize-1, redisClient)
		if listErr != nil {
			log.Fatalf("ERROR: Could not retrieve page of records: %s", listErr)
		}
		if len(records) == 0 {
			break
		}

		var deletedInPage int64
		for i := range records {
			if ProcessRecord(&records[i], cutoffTime, *dryRun, redisClient) {
				removedCount += 1
				if !*dryRun {
					deletedInPage += 1
				}
			}
		}

		//deletions shift the remaining index entries down, so only advance
		//past the records that are still there
		start += int64(len(records)) - deletedInPage
	}

	RequeueOrphans(redisClient, *dryRun)

	endTime := time.Now()
	log.Printf("Reaping run removed %d records, completed at %s and took %d seconds",
		removedCount, endTime, endTime.Unix()-startTime.Unix())
}
