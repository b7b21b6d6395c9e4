package models

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
)

type EncodeStatus int

const (
	ENCODE_PENDING EncodeStatus = iota
	ENCODE_RUNNING
	ENCODE_COMPLETED
	ENCODE_FAILED
)

const (
	RECORD_CTIME_INDEX = "transcoderig:encoderecord:ctimeindex"
	RECORD_PATH_INDEX  = "transcoderig:encoderecord:pathindex" //hash of source path -> record id, one record per source file
)

/*
*
persistent state for one encode job. stored as json in redis, indexed by
creation time and by source path.
*/
type EncodeRecord struct {
	Id            uuid.UUID    `json:"id"`
	SourcePath    string       `json:"sourcePath"`
	TierName      string       `json:"tierName"`
	EncodeVersion string       `json:"encodeVersion"` //outputs produced under an older version tag are due for re-encoding
	Status        EncodeStatus `json:"status"`
	QueuedAt      time.Time    `json:"queuedAt"`
	StartedAt     *time.Time   `json:"startedAt"`
	CompletedAt   *time.Time   `json:"completedAt"`
	ErrorMessage  string       `json:"errorMessage"`
	CommandArgs   []string     `json:"commandArgs"` //the derived encoder argument vector
}

func NewEncodeRecord(sourcePath string, tierName string, encodeVersion string) EncodeRecord {
	return EncodeRecord{
		Id:            uuid.New(),
		SourcePath:    sourcePath,
		TierName:      tierName,
		EncodeVersion: encodeVersion,
		Status:        ENCODE_PENDING,
		QueuedAt:      time.Now(),
	}
}

func recordKey(id uuid.UUID) string {
	return fmt.Sprintf("transcoderig:encoderecord:%s", id.String())
}

/*
*
write the record and its index entries in a single transaction
*/
func (r *EncodeRecord) Save(client redis.Cmdable) error {
	content, marshalErr := json.Marshal(r)
	if marshalErr != nil {
		log.Print("Could not encode record for ", r.SourcePath, ": ", marshalErr)
		return marshalErr
	}

	pipe := client.TxPipeline()
	pipe.Set(recordKey(r.Id), string(content), 0)
	pipe.ZAdd(RECORD_CTIME_INDEX, &redis.Z{
		Score:  float64(r.QueuedAt.Unix()),
		Member: r.Id.String(),
	})
	pipe.HSet(RECORD_PATH_INDEX, r.SourcePath, r.Id.String())
	_, execErr := pipe.Exec()
	if execErr != nil {
		log.Printf("Could not save record %s: %s", r.Id, execErr)
	}
	return execErr
}

func EncodeRecordForId(id uuid.UUID, client redis.Cmdable) (*EncodeRecord, error) {
	content, getErr := client.Get(recordKey(id)).Result()
	if getErr != nil {
		if getErr == redis.Nil {
			return nil, nil
		}
		log.Printf("Could not retrieve record %s: %s", id, getErr)
		return nil, getErr
	}

	var rec EncodeRecord
	marshalErr := json.Unmarshal([]byte(content), &rec)
	if marshalErr != nil {
		log.Printf("ERROR: Corrupted record at %s: %s", recordKey(id), marshalErr)
		return nil, marshalErr
	}
	return &rec, nil
}

/*
*
look up the record for a given source path, or nil if the path has never
been recorded
*/
func EncodeRecordForPath(sourcePath string, client redis.Cmdable) (*EncodeRecord, error) {
	idString, getErr := client.HGet(RECORD_PATH_INDEX, sourcePath).Result()
	if getErr != nil {
		if getErr == redis.Nil {
			return nil, nil
		}
		return nil, getErr
	}

	id, parseErr := uuid.Parse(idString)
	if parseErr != nil {
		log.Printf("ERROR: Corrupted path index entry for %s: %s", sourcePath, parseErr)
		return nil, parseErr
	}
	return EncodeRecordForId(id, client)
}

/*
*
page through records oldest first. start/stop are rank offsets into the
creation-time index.
*/
func ListEncodeRecords(start int64, stop int64, client redis.Cmdable) ([]EncodeRecord, error) {
	idStrings, rangeErr := client.ZRange(RECORD_CTIME_INDEX, start, stop).Result()
	if rangeErr != nil {
		log.Printf("Could not range record index: %s", rangeErr)
		return nil, rangeErr
	}

	result := make([]EncodeRecord, 0, len(idStrings))
	for _, idString := range idStrings {
		id, parseErr := uuid.Parse(idString)
		if parseErr != nil {
			log.Printf("ERROR: Corrupted entry '%s' in record index: %s", idString, parseErr)
			return nil, parseErr
		}
		recPtr, getErr := EncodeRecordForId(id, client)
		if getErr != nil {
			return nil, getErr
		}
		if recPtr == nil {
			log.Printf("WARNING: Index entry %s has no record, skipping", idString)
			continue
		}
		result = append(result, *recPtr)
	}
	return result, nil
}

/*
*
remove the record and its index entries. the path index is only cleared if
it still points at this record; a newer record for the same source file
owns the entry once it has been saved.
*/
func (r *EncodeRecord) Delete(client redis.Cmdable) error {
	indexedId, getErr := client.HGet(RECORD_PATH_INDEX, r.SourcePath).Result()
	if getErr != nil && getErr != redis.Nil {
		return getErr
	}

	pipe := client.TxPipeline()
	pipe.Del(recordKey(r.Id))
	pipe.ZRem(RECORD_CTIME_INDEX, r.Id.String())
	if indexedId == r.Id.String() {
		pipe.HDel(RECORD_PATH_INDEX, r.SourcePath)
	}
	_, execErr := pipe.Exec()
	return execErr
}

func (r *EncodeRecord) MarkRunning(client redis.Cmdable) error {
	now := time.Now()
	r.Status = ENCODE_RUNNING
	r.StartedAt = &now
	return r.Save(client)
}

func (r *EncodeRecord) MarkCompleted(client redis.Cmdable, commandArgs []string) error {
	now := time.Now()
	r.Status = ENCODE_COMPLETED
	r.CompletedAt = &now
	r.CommandArgs = commandArgs
	return r.Save(client)
}

func (r *EncodeRecord) MarkFailed(client redis.Cmdable, errorMessage string) error {
	now := time.Now()
	r.Status = ENCODE_FAILED
	r.CompletedAt = &now
	r.ErrorMessage = errorMessage
	return r.Save(client)
}
