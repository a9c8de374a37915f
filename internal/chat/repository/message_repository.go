package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"marketplace_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrMessageNotFound returned when a message id does not resolve
var ErrMessageNotFound = errors.New("message not found")

// MessageRepository definition durable message persistence
type MessageRepository interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, msg *domain.Message) error
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// Delete removes the document, reports whether anything was removed
	Delete(ctx context.Context, id string) (bool, error)
	UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error
	// SetReaction replaces the user's prior reaction without touching the
	// rest of the list, concurrent reactors never overwrite each other
	SetReaction(ctx context.Context, id string, reaction domain.Reaction) error
	// MarkDelivered advances sent→delivered, false when the message was
	// already further along (idempotent by filter)
	MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkRead advances to read, false when already read
	MarkRead(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkConversationRead flips every unread message sent by senderID to
	// receiverID, returns one update per flipped message
	MarkConversationRead(ctx context.Context, receiverID, senderID string, at time.Time) ([]domain.ReadUpdate, error)
	// MarkDeliveredForReceiver bulk sent→delivered for a newly-online user
	MarkDeliveredForReceiver(ctx context.Context, receiverID string, at time.Time) ([]domain.DeliveryUpdate, error)
	// FindConversation pages from most-recent backward, result ascending
	FindConversation(ctx context.Context, userID, counterpartyID string, page, limit int64) ([]domain.Message, int64, error)
	ListConversationSummaries(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	Search(ctx context.Context, userID, query string, limit int64) ([]domain.Message, error)
}

type mongoMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &mongoMessageRepository{
		coll: db.Collection("messages"),
	}
}

// EnsureIndexes create the two dominant-query indexes
func (r *mongoMessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "sender_id", Value: 1},
			{Key: "receiver_id", Value: 1},
			{Key: "created_at", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "receiver_id", Value: 1},
			{Key: "is_read", Value: 1},
		}},
	})
	return err
}

func (r *mongoMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *mongoMessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	var msg domain.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *mongoMessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoMessageRepository) UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"content":    content,
			"is_edited":  true,
			"edited_at":  editedAt,
			"updated_at": editedAt,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// SetReaction pull the user's old entry then push the new one, both
// updates target only that user's slot so a concurrent reaction by the
// counterparty survives
func (r *mongoMessageRepository) SetReaction(ctx context.Context, id string, reaction domain.Reaction) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{
			"reactions": bson.M{"user_id": reaction.UserID},
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMessageNotFound
	}

	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"reactions": reaction},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	return err
}

// MarkDelivered the filter carries the precondition, applying the
// transition twice converges instead of corrupting
func (r *mongoMessageRepository) MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "message_status": domain.StatusSent},
		bson.M{"$set": bson.M{
			"message_status": domain.StatusDelivered,
			"delivered_at":   at,
			"updated_at":     at,
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoMessageRepository) MarkRead(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "is_read": false},
		bson.M{"$set": bson.M{
			"message_status": domain.StatusRead,
			"is_read":        true,
			"read_at":        at,
			"updated_at":     at,
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoMessageRepository) MarkConversationRead(ctx context.Context, receiverID, senderID string, at time.Time) ([]domain.ReadUpdate, error) {
	filter := bson.M{
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"is_read":     false,
	}

	// collect the ids first so each flipped message can produce a receipt
	cur, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1, "sender_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID       string `bson:"_id"`
		SenderID string `bson:"sender_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	_, err = r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"message_status": domain.StatusRead,
		"is_read":        true,
		"read_at":        at,
		"updated_at":     at,
	}})
	if err != nil {
		return nil, err
	}

	updates := make([]domain.ReadUpdate, 0, len(docs))
	for _, d := range docs {
		updates = append(updates, domain.ReadUpdate{MessageID: d.ID, SenderID: d.SenderID, ReadAt: at})
	}
	return updates, nil
}

func (r *mongoMessageRepository) MarkDeliveredForReceiver(ctx context.Context, receiverID string, at time.Time) ([]domain.DeliveryUpdate, error) {
	filter := bson.M{
		"receiver_id":    receiverID,
		"message_status": domain.StatusSent,
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1, "sender_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID       string `bson:"_id"`
		SenderID string `bson:"sender_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	_, err = r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"message_status": domain.StatusDelivered,
		"delivered_at":   at,
		"updated_at":     at,
	}})
	if err != nil {
		return nil, err
	}

	updates := make([]domain.DeliveryUpdate, 0, len(docs))
	for _, d := range docs {
		updates = append(updates, domain.DeliveryUpdate{MessageID: d.ID, SenderID: d.SenderID, DeliveredAt: at})
	}
	return updates, nil
}

func (r *mongoMessageRepository) FindConversation(ctx context.Context, userID, counterpartyID string, page, limit int64) ([]domain.Message, int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userID, "receiver_id": counterpartyID},
		bson.M{"sender_id": counterpartyID, "receiver_id": userID},
	}}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, 0, err
	}

	// page is fetched newest-first, flip for chronological display
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

func (r *mongoMessageRepository) ListConversationSummaries(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	pipeline := mongo.Pipeline{
		// 1. every message the user participates in
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "sender_id", Value: userID}},
				bson.D{{Key: "receiver_id", Value: userID}},
			}},
		}}},
		// 2. newest first so $first picks the last message per group
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		// 3. the other party is the grouping key
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "counterparty", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$sender_id", userID}}},
				"$receiver_id",
				"$sender_id",
			}}}},
		}}},
		// 4. per-counterparty rollup
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$counterparty"},
			{Key: "last_message", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
			{Key: "total_messages", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "unread_count", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$and", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$receiver_id", userID}}},
					bson.D{{Key: "$eq", Value: bson.A{"$is_read", false}}},
				}}},
				1,
				0,
			}}}}}},
			{Key: "last_activity_at", Value: bson.D{{Key: "$first", Value: "$created_at"}}},
		}}},
		// 5. most recently active conversation on top
		bson.D{{Key: "$sort", Value: bson.D{{Key: "last_activity_at", Value: -1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var summaries []domain.ConversationSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *mongoMessageRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{
		"receiver_id": userID,
		"is_read":     false,
	})
}

func (r *mongoMessageRepository) Search(ctx context.Context, userID, query string, limit int64) ([]domain.Message, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"sender_id": userID},
				bson.M{"receiver_id": userID},
			}},
			bson.M{"$or": bson.A{
				bson.M{"content": pattern},
				bson.M{"file_name": pattern},
			}},
		},
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
