package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/unimate-backend/internal/domain"
)

// ChatMessageRepo provides typed DynamoDB operations for the chat history table.
// PK: conversation_id, SK: message_id (ULIDs, so queries come back in send order).
type ChatMessageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChatMessageRepo(client *dynamodb.Client, tableName string) *ChatMessageRepo {
	return &ChatMessageRepo{client: client, tableName: tableName}
}

func (r *ChatMessageRepo) Put(ctx context.Context, m *domain.ChatMessage) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ChatMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]domain.ChatMessage, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("conversation_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: conversationID},
		},
	})
	if err != nil {
		return nil, err
	}
	var messages []domain.ChatMessage
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
