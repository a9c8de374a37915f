package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageStatus_CanAdvanceTo(t *testing.T) {
	// forward only, read reachable straight from sent
	assert.True(t, StatusSent.CanAdvanceTo(StatusDelivered))
	assert.True(t, StatusSent.CanAdvanceTo(StatusRead))
	assert.True(t, StatusDelivered.CanAdvanceTo(StatusRead))

	// never backward, never self
	assert.False(t, StatusDelivered.CanAdvanceTo(StatusSent))
	assert.False(t, StatusRead.CanAdvanceTo(StatusSent))
	assert.False(t, StatusRead.CanAdvanceTo(StatusDelivered))
	assert.False(t, StatusSent.CanAdvanceTo(StatusSent))
	assert.False(t, StatusRead.CanAdvanceTo(StatusRead))
}

func TestMessageStatus_Rank_Total(t *testing.T) {
	statuses := []MessageStatus{StatusSent, StatusDelivered, StatusRead}
	for i, lo := range statuses {
		for j, hi := range statuses {
			assert.Equal(t, i < j, lo.CanAdvanceTo(hi), "%s -> %s", lo, hi)
		}
	}
	assert.Equal(t, -1, MessageStatus("bogus").Rank())
}

func TestMessageStatus_NeverRegresses(t *testing.T) {
	statuses := []MessageStatus{StatusSent, StatusDelivered, StatusRead}
	rng := rand.New(rand.NewSource(1))

	for run := 0; run < 100; run++ {
		current := StatusSent
		for step := 0; step < 20; step++ {
			prev := current.Rank()
			next := statuses[rng.Intn(len(statuses))]
			if current.CanAdvanceTo(next) {
				current = next
			}
			// arbitrary transitions through the guard only move forward
			assert.GreaterOrEqual(t, current.Rank(), prev)
		}
	}
}

func TestMessage_SetReaction(t *testing.T) {
	msg := &Message{}

	msg.SetReaction(Reaction{UserID: "u1", Emoji: "👍", CreatedAt: time.Now()})
	msg.SetReaction(Reaction{UserID: "u2", Emoji: "🙂", CreatedAt: time.Now()})
	assert.Len(t, msg.Reactions, 2)

	// re-reacting replaces, never duplicates
	msg.SetReaction(Reaction{UserID: "u1", Emoji: "❤️", CreatedAt: time.Now()})
	assert.Len(t, msg.Reactions, 2)

	seen := map[string]string{}
	for _, r := range msg.Reactions {
		_, dup := seen[r.UserID]
		assert.False(t, dup, "one reaction per user")
		seen[r.UserID] = r.Emoji
	}
	assert.Equal(t, "❤️", seen["u1"])

	// the replaced reaction moves to the tail
	assert.Equal(t, "u1", msg.Reactions[len(msg.Reactions)-1].UserID)
}

func TestMessage_InvolvedUser(t *testing.T) {
	msg := &Message{SenderID: "a", ReceiverID: "b"}
	assert.True(t, msg.InvolvedUser("a"))
	assert.True(t, msg.InvolvedUser("b"))
	assert.False(t, msg.InvolvedUser("c"))
}

func TestMessageType_Valid(t *testing.T) {
	for _, valid := range []MessageType{
		MessageTypeText, MessageTypeImage, MessageTypeDocument,
		MessageTypePropertyInquiry, MessageTypeGeneral, MessageTypeSystem, MessageTypeMixed,
	} {
		assert.True(t, valid.Valid())
	}
	assert.False(t, MessageType("video").Valid())
	assert.False(t, MessageType("").Valid())
}
