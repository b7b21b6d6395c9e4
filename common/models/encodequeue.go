package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

type QueueName string

const (
	PENDING_QUEUE QueueName = "filetranscodequeue"
	RUNNING_QUEUE QueueName = "filetranscoderunning"
)

/** -----------------
queue entry data
----------------
*/

/*
*
one file-transcode event. this is what travels over the queue, as json.
*/
type EncodeRequest struct {
	RequestId     uuid.UUID        `json:"requestId"`
	SourcePath    string           `json:"sourcePath"`
	Stream        StreamDescriptor `json:"stream"`
	TierName      string           `json:"tierName"` //tier selected at scan time, informational. The worker re-resolves from the descriptor.
	EncodeVersion string           `json:"encodeVersion"`
	QueuedAt      time.Time        `json:"queuedAt"`
}

func (r EncodeRequest) Marshal() (string, error) {
	content, marshalErr := json.Marshal(r)
	if marshalErr != nil {
		log.Printf("Could not encode request for %s: %s", r.SourcePath, marshalErr)
		return "", marshalErr
	}
	return string(content), nil
}

/*
*
decode hook for queue payloads. json gives us plain strings for the request
id and the queued-at timestamp; convert those to uuid.UUID and time.Time,
surfacing parse failures rather than silently zeroing the field. everything
else (including the nested stream descriptor numbers) mapstructure handles
natively.
*/
func encodeRequestDecodeHook(inType reflect.Type, outType reflect.Type, value interface{}) (interface{}, error) {
	if inType.Kind() != reflect.String {
		return value, nil
	}
	switch outType {
	case reflect.TypeOf(uuid.UUID{}):
		return uuid.Parse(value.(string))
	case reflect.TypeOf(time.Time{}):
		return time.Parse(time.RFC3339, value.(string))
	default:
		return value, nil
	}
}

/*
*
decode a queue payload. the payload is unmarshalled to a generic map first
and then mapstructure-decoded through the hook above, so uuid and timestamp
strings come through as their proper types.
*/
func UnmarshalEncodeRequest(from string) (*EncodeRequest, error) {
	var rawData map[string]interface{}
	unmarshalErr := json.Unmarshal([]byte(from), &rawData)
	if unmarshalErr != nil {
		return nil, unmarshalErr
	}

	var rq EncodeRequest
	decoder, setupErr := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: encodeRequestDecodeHook,
		Result:     &rq,
	})
	if setupErr != nil {
		return nil, setupErr
	}
	decodeErr := decoder.Decode(rawData)
	if decodeErr != nil {
		return nil, decodeErr
	}
	return &rq, nil
}

/** -----------------
queue manipulation
----------------
*/

func queueKey(queueName QueueName) string {
	return fmt.Sprintf("transcoderig:%s", queueName)
}

func GetQueueLength(client redis.Cmdable, queueName QueueName) (int64, error) {
	count, err := client.LLen(queueKey(queueName)).Result()
	if err != nil {
		log.Printf("Could not retrieve queue length for %s: %s", queueName, err)
	}
	return count, err
}

/*
*
publish one file-transcode event onto the pending queue
*/
func AddToQueue(client redis.Cmdable, queueName QueueName, rq EncodeRequest) error {
	content, marshalErr := rq.Marshal()
	if marshalErr != nil {
		return marshalErr
	}
	_, err := client.LPush(queueKey(queueName), content).Result()
	return err
}

/*
*
move the next pending request onto the running queue and return it.
the running-queue copy stays there until CompleteRequest removes it, so a
consumer that dies mid-job leaves evidence for the reaper to requeue.
returns nil with no error if the queue is empty.

a consumer should hold at most one in-flight request from this function and
complete it before taking the next; that is what bounds delivery to one
message at a time.
*/
func GetNextRequest(client redis.Cmdable, pendingQueue QueueName, runningQueue QueueName) (*EncodeRequest, error) {
	content, popErr := client.RPopLPush(queueKey(pendingQueue), queueKey(runningQueue)).Result()
	if popErr != nil {
		if popErr == redis.Nil {
			return nil, nil
		}
		log.Print("ERROR: Could not get next item from queue: ", popErr)
		return nil, popErr
	}

	rq, decodeErr := UnmarshalEncodeRequest(content)
	if decodeErr != nil {
		log.Printf("ERROR: Bad data in the %s queue: %s. Offending data was %s.", pendingQueue, decodeErr, content)
		//remove the corrupted entry so it does not get requeued forever
		client.LRem(queueKey(runningQueue), 0, content)
		return nil, decodeErr
	}
	return rq, nil
}

/*
*
acknowledge a delivered request by removing it from the running queue
*/
func CompleteRequest(client redis.Cmdable, runningQueue QueueName, rq EncodeRequest) error {
	content, marshalErr := rq.Marshal()
	if marshalErr != nil {
		return marshalErr
	}

	removed, err := client.LRem(queueKey(runningQueue), 0, content).Result()
	if err != nil {
		log.Printf("Could not remove %s from %s: %s", rq.RequestId, runningQueue, err)
		return err
	}
	if removed == 0 {
		log.Printf("WARNING: Could not find item %s to remove from queue %s", rq.RequestId, runningQueue)
		return errors.New("could not find item to remove from queue")
	}
	return nil
}

/*
*
get a 'snapshot' of the queue state at this moment in time.
it is recommended to acquire the queue lock first and not release it until
done, so that the snapshot stays consistent with the queue.
*/
func SnapshotQueue(client redis.Cmdable, queueName QueueName) ([]EncodeRequest, error) {
	rawData, err := client.LRange(queueKey(queueName), 0, -1).Result()
	if err != nil {
		log.Printf("Could not range %s: %s", queueKey(queueName), err)
		return nil, err
	}

	result := make([]EncodeRequest, len(rawData))
	for i, rawEntry := range rawData {
		ent, parseErr := UnmarshalEncodeRequest(rawEntry)
		if parseErr != nil {
			log.Printf("ERROR: Bad data in the %s queue: %s. Offending data was %s.", queueName, parseErr, rawEntry)
			return nil, parseErr
		}
		result[i] = *ent
	}
	return result, nil
}

/*
*
push a request back onto the pending queue and drop it from the running
queue, for requests whose consumer went away
*/
func RequeueRequest(client redis.Cmdable, rq EncodeRequest) error {
	content, marshalErr := rq.Marshal()
	if marshalErr != nil {
		return marshalErr
	}

	pipe := client.TxPipeline()
	pipe.LRem(queueKey(RUNNING_QUEUE), 0, content)
	pipe.LPush(queueKey(PENDING_QUEUE), content)
	_, execErr := pipe.Exec()
	return execErr
}

/** -----------------
locking functions
----------------
*/

func lockKey(queueName QueueName) string {
	return fmt.Sprintf("transcoderig:%s:lock", queueName)
}

/*
*
check if the given queue lock is set
*/
func CheckQueueLock(client redis.Cmdable, queueName QueueName) (bool, error) {
	result, err := client.Exists(lockKey(queueName)).Result()
	if err != nil {
		log.Printf("Could not check lock for %s: %s", lockKey(queueName), err)
		return true, err
	}
	return result > 0, nil
}

/*
*
set the given queue lock
*/
func SetQueueLock(client redis.Cmdable, queueName QueueName) {
	client.Set(lockKey(queueName), "set", 2*time.Second)
}

/*
*
release the given queue lock
*/
func ReleaseQueueLock(client redis.Cmdable, queueName QueueName) {
	client.Del(lockKey(queueName))
}

/*
block until the given queue lock is available or the timeout occurs
*/
func WaitForQueueLock(client redis.Cmdable, queueName QueueName, timeout time.Duration) error {
	timeoutTimer := time.NewTicker(timeout)
	defer timeoutTimer.Stop()
	clearedChannel := make(chan error, 1)

	go func() {
		for {
			locked, checkErr := CheckQueueLock(client, queueName)
			if checkErr != nil {
				clearedChannel <- checkErr
				return
			}
			if !locked {
				clearedChannel <- nil
				return
			}
			time.Sleep(50 * time.Millisecond)
		}
	}()

	select {
	case <-timeoutTimer.C:
		return errors.New(fmt.Sprintf("Timed out waiting for lock on %s", queueName))
	case checkErr := <-clearedChannel:
		return checkErr
	}
}
