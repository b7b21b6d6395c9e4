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
process one delivered request end to end: mark the record running, derive
the owned encoding specification and the encoder argument vector, and store
both. the request stays on the running queue until this returns, so a crash
here leaves it for the reaper to requeue.
*/
func ProcessRequest(rq *models.EncodeRequest, table *models.ProfileTable, config *helpers.Config, redisClient redis.Cmdable) error {
	record, lookupErr := models.EncodeRecordForPath(rq.SourcePath, redisClient)
	if lookupErr != nil {
		return lookupErr
	}
	if record == nil {
		log.Printf("WARNING: No record for %s, creating one", rq.SourcePath)
		newRecord := models.NewEncodeRecord(rq.SourcePath, rq.TierName, rq.EncodeVersion)
		record = &newRecord
	}

	markErr := record.MarkRunning(redisClient)
	if markErr != nil {
		return markErr
	}

	//resolution is pure and per-job, so the worker derives its own owned copy
	//rather than trusting whatever the producer computed
	spec, resolveErr := table.Resolve(rq.Stream)
	if resolveErr != nil {
		log.Printf("ERROR: Could not resolve a profile for %s: %s", rq.SourcePath, resolveErr)
		record.MarkFailed(redisClient, resolveErr.Error())
		return nil //the request itself is done, the failure is recorded
	}

	spec.AddFlags(config.ExtraVideoFlags)

	outputPath := OutputFilename(config.Scratch.LocalPath, rq.SourcePath, spec.TierName)
	args := BuildCommandArgs(spec, rq.SourcePath, outputPath)

	log.Printf("Prepared %s as tier '%s': ffmpeg %v", rq.SourcePath, spec.TierName, args)
	return record.MarkCompleted(redisClient, args)
}

/*
*
estimate and log when the pending queue will drain, based on the average
time per processed item so far
*/
func logDrainEstimate(redisClient redis.Cmdable, processedCount int64, elapsed time.Duration) {
	if processedCount == 0 {
		return
	}
	pendingLength, lengthErr := models.GetQueueLength(redisClient, models.PENDING_QUEUE)
	if lengthErr != nil || pendingLength == 0 {
		return
	}

	perItem := elapsed.Seconds() / float64(processedCount)
	remaining, completesAt := helpers.FormatCompletionEstimate(perItem*float64(pendingLength), time.Now())
	log.Printf("%d requests pending, estimated %s remaining (done around %s)", pendingLength, remaining, completesAt)
}

func main() {
	configFilePtr := flag.String("config", "config/serverconfig.yaml", "path to the server config yaml")
	flag.Parse()

	config, configReadErr := helpers.ReadConfig(*configFilePtr)
	if configReadErr != nil {
		log.Fatal("No configuration, can't continue")
	}

	table, tableErr := models.LoadProfileTable(config.ProfilePath)
	if tableErr != nil {
		log.Fatalf("Could not load the profile table: %s", tableErr)
	}

	redisClient, redisErr := SetupRedis(config)
	if redisErr != nil {
		log.Fatal("Could not connect to redis")
	}

	log.Printf("Worker up, consuming from %s", models.PENDING_QUEUE)

	pollTicker := time.NewTicker(1 * time.Second)
	startTime := time.Now()
	var processedCount int64

	//one request in flight at a time: the next is only taken once the
	//previous one has been completed or failed and acknowledged
	for range pollTicker.C {
		rq, getErr := models.GetNextRequest(redisClient, models.PENDING_QUEUE, models.RUNNING_QUEUE)
		if getErr != nil {
			log.Printf("ERROR: Could not fetch from the queue: %s", getErr)
			continue
		}
		if rq == nil {
			continue
		}

		processErr := ProcessRequest(rq, table, config, redisClient)
		if processErr != nil {
			log.Printf("ERROR: Could not process %s: %s", rq.SourcePath, processErr)
			//leave the entry on the running queue for the reaper rather than ack a failure
			continue
		}

		completeErr := models.CompleteRequest(redisClient, models.RUNNING_QUEUE, *rq)
		if completeErr != nil {
			log.Printf("ERROR: Could not acknowledge %s: %s", rq.SourcePath, completeErr)
		}

		processedCount += 1
		logDrainEstimate(redisClient, processedCount, time.Since(startTime))
	}
}
