package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/planner-ranker/internal/domain"
)

// AWSStore persists plans in DynamoDB and workbook artifacts in S3.
type AWSStore struct {
	dynamoDB  *dynamodb.Client
	s3Client  *s3.Client
	tableName string
	bucket    string
}

// planItem is the DynamoDB shape for a saved plan. The plan itself travels
// as a JSON blob so the table schema never chases the plan struct.
type planItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
}

const planPartition = "PLAN"

// NewAWSStore creates the AWS-backed store.
func NewAWSStore(ctx context.Context, tableName, bucket, region, profile string) (*AWSStore, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &AWSStore{
		dynamoDB:  dynamodb.NewFromConfig(cfg),
		s3Client:  s3.NewFromConfig(cfg),
		tableName: tableName,
		bucket:    bucket,
	}, nil
}

// SavePlan writes a plan to DynamoDB, replacing any previous version.
func (s *AWSStore) SavePlan(ctx context.Context, plan domain.Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}

	item := planItem{
		PK:        planPartition,
		SK:        plan.PlanID,
		Data:      string(data),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling item: %w", err)
	}

	_, err = s.dynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting plan to DynamoDB: %w", err)
	}

	return nil
}

// ListPlans loads every saved plan from DynamoDB.
func (s *AWSStore) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	var plans []domain.Plan

	var lastKey map[string]types.AttributeValue
	for {
		result, err := s.dynamoDB.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: planPartition},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("querying DynamoDB: %w", err)
		}

		for _, raw := range result.Items {
			var item planItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				continue
			}
			var plan domain.Plan
			if err := json.Unmarshal([]byte(item.Data), &plan); err != nil {
				continue
			}
			plans = append(plans, plan)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return plans, nil
}

// PutWorkbook uploads a generated workbook to S3 under the given key.
func (s *AWSStore) PutWorkbook(ctx context.Context, key string, data []byte) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
	})
	if err != nil {
		return fmt.Errorf("putting workbook to S3: %w", err)
	}
	return nil
}
