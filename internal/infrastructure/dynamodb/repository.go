package dynamodb

import (
	"context"
	"errors"
	"strconv"
	"time"

	"app-hub/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/google/uuid"
)

type putItemAPI interface {
	PutItem(ctx context.Context, params *awsv2dynamodb.PutItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.PutItemOutput, error)
}

type Client struct {
	db        putItemAPI
	tableName string
}

func NewClient(ctx context.Context, region, tableName string) (*Client, error) {
	if tableName == "" {
		return nil, errors.New("transcript table name is required")
	}
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	awsv2xray.AWSV2Instrumentor(&cfg.APIOptions)
	client := awsv2dynamodb.NewFromConfig(cfg)
	return &Client{db: client, tableName: tableName}, nil
}

func userPK(userID int64) string { return "USER#" + strconv.FormatInt(userID, 10) }
func chatSK(at time.Time, id string) string {
	return "CHAT#" + at.UTC().Format(time.RFC3339Nano) + "#" + id
}

type TranscriptRepository struct{ client *Client }

func NewTranscriptRepository(client *Client) *TranscriptRepository {
	return &TranscriptRepository{client: client}
}

type transcriptSource struct {
	URI   string `dynamodbav:"URI"`
	Title string `dynamodbav:"Title"`
}

func (r *TranscriptRepository) Put(ctx context.Context, t domain.ChatTranscript) error {
	sources := make([]transcriptSource, 0, len(t.Reply.Sources))
	for _, s := range t.Reply.Sources {
		sources = append(sources, transcriptSource{URI: s.URI, Title: s.Title})
	}
	item := map[string]any{
		"PK":          userPK(t.UserID),
		"SK":          chatSK(t.RequestedAt, uuid.NewString()),
		"EntityType":  "CHAT_TRANSCRIPT",
		"UserID":      t.UserID,
		"Query":       t.Query,
		"Answer":      t.Reply.Text,
		"Sources":     sources,
		"SourceCount": len(sources),
		"RequestedAt": t.RequestedAt.UTC().Format(time.RFC3339),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutChatTranscript", func(ctx context.Context) error {
		_, err := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName:           aws.String(r.client.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
		})
		return err
	})
}
