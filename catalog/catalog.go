// Package catalog publishes converted songs to a DynamoDB table so other
// services can find them without walking the output tree.
package catalog

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/util"
	"github.com/pkg/errors"
)

// DynamoDB allows at most 100 keys per BatchGetItem request.
const maxBatchKeys = 100

const maxBatchAttempts = 5

var retryDelay = 50 * time.Millisecond

type Entry struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Artist string   `json:"artist"`
	Album  string   `json:"album"`
	Path   string   `json:"path"`
	Parts  []string `json:"parts"`
}

func EntryFor(song model.SongData, path string) Entry {
	e := Entry{
		ID:     song.ID,
		Title:  song.SongName,
		Artist: song.ArtistName,
		Album:  song.AlbumName,
		Path:   path,
		Parts:  []string{},
	}
	for _, part := range song.InstrumentParts {
		e.Parts = append(e.Parts, part.InstrumentName)
	}
	sort.Strings(e.Parts)
	return e
}

type Catalog interface {
	Put(ctx context.Context, entry Entry) error
	Get(ctx context.Context, ids []string) (map[string]Entry, error)
}

type Dynamo struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func New(endpoint, region, table string) (*Dynamo, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return NewWithClient(dynamodb.New(sess), table), nil
}

func NewWithClient(client dynamodbiface.DynamoDBAPI, table string) *Dynamo {
	return &Dynamo{client: client, table: table}
}

func (d *Dynamo) Put(ctx context.Context, entry Entry) error {
	item := map[string]*dynamodb.AttributeValue{
		"PK":      {S: aws.String(entry.ID)},
		"Title":   {S: aws.String(entry.Title)},
		"Artist":  {S: aws.String(entry.Artist)},
		"Release": {S: aws.String(entry.Album)},
		"Path":    {S: aws.String(entry.Path)},
	}
	if len(entry.Parts) > 0 {
		item["Parts"] = &dynamodb.AttributeValue{SS: aws.StringSlice(entry.Parts)}
	}

	_, err := d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	if err != nil {
		return errors.Wrapf(err, "could not publish song %s", entry.ID)
	}
	return nil
}

func str(v *dynamodb.AttributeValue) string {
	if v == nil || v.S == nil {
		return ""
	}
	return *v.S
}

func entryFromItem(v map[string]*dynamodb.AttributeValue) Entry {
	e := Entry{
		ID:     str(v["PK"]),
		Title:  str(v["Title"]),
		Artist: str(v["Artist"]),
		Album:  str(v["Release"]),
		Path:   str(v["Path"]),
		Parts:  []string{},
	}
	if parts := v["Parts"]; parts != nil {
		e.Parts = aws.StringValueSlice(parts.SS)
	}
	return e
}

func (d *Dynamo) Get(ctx context.Context, ids []string) (map[string]Entry, error) {
	res := make(map[string]Entry)

	for start := 0; start < len(ids); start += maxBatchKeys {
		end := util.Min(start+maxBatchKeys, len(ids))

		var keys []map[string]*dynamodb.AttributeValue
		for _, id := range ids[start:end] {
			keys = append(keys, map[string]*dynamodb.AttributeValue{
				"PK": {S: aws.String(id)},
			})
		}
		pending := map[string]*dynamodb.KeysAndAttributes{d.table: {Keys: keys}}

		// throttled requests come back as unprocessed keys
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt == maxBatchAttempts {
				return nil, errors.New("DynamoDB kept throttling the batch")
			}
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(retryDelay << (attempt - 1)):
				}
			}

			out, err := d.client.BatchGetItemWithContext(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: pending,
			})
			if err != nil {
				return nil, errors.Wrap(err, "error from DynamoDB")
			}
			for _, v := range out.Responses[d.table] {
				e := entryFromItem(v)
				res[e.ID] = e
			}
			pending = out.UnprocessedKeys
		}
	}
	return res, nil
}
