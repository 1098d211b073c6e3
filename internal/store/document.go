// internal/store/document.go
package store

import (
	"context"
	"time"

	"logtracker/internal/config"
	"logtracker/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DocumentStore
// ------------------------------------------------------------
// 필터/정렬 대상이 되는 조회용 레코드 저장소.
//
//   - Put: 레코드 1건 기록 (append-only, id 는 재사용되지 않는다).
//   - ScanAll: 전체 레코드 반환. 페이지네이션/인덱스 없는 full scan 으로,
//     소규모 전제의 알려진 한계다. 인터페이스 뒤에 격리해 두어
//     이후 인덱스 기반 구현으로 교체해도 호출자는 바뀌지 않는다.
type DocumentStore interface {
	Put(ctx context.Context, entry model.LogEntry) error
	ScanAll(ctx context.Context) ([]model.LogEntry, error)
}

// DynamoDoc 은 DocumentStore 의 DynamoDB 구현이다.
type DynamoDoc struct {
	client  *dynamodb.Client
	table   string
	timeout time.Duration
}

func NewDynamoDoc(cfg config.Config, awsCfg aws.Config) *DynamoDoc {
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.RetryMaxAttempts = 0
	})

	return &DynamoDoc{
		client:  client,
		table:   cfg.DocTable,
		timeout: cfg.DDBTimeout,
	}
}

// Put 은 PutItem 1회 호출을 수행한다. retry 없음.
// RetrievalURL 은 dynamodbav:"-" 이므로 marshal 단계에서 제외된다.
func (d *DynamoDoc) Put(ctx context.Context, entry model.LogEntry) error {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return err
	}

	ctx2, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err = d.client.PutItem(ctx2, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	return err
}

// ScanAll 은 LastEvaluatedKey 를 따라가며 테이블 전체를 읽는다.
// Scan 1MB 페이지 제한 때문에, 페이지를 끝까지 따라가지 않으면
// "full scan" 계약이 조용히 깨진다.
func (d *DynamoDoc) ScanAll(ctx context.Context) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	var startKey map[string]types.AttributeValue

	for {
		out, err := d.scanPage(ctx, startKey)
		if err != nil {
			return nil, err
		}

		var page []model.LogEntry
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		entries = append(entries, page...)

		if out.LastEvaluatedKey == nil {
			return entries, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (d *DynamoDoc) scanPage(ctx context.Context, startKey map[string]types.AttributeValue) (*dynamodb.ScanOutput, error) {
	ctx2, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	return d.client.Scan(ctx2, &dynamodb.ScanInput{
		TableName:         aws.String(d.table),
		ExclusiveStartKey: startKey,
	})
}
