package domain

import (
	"strings"
	"time"
)

// ChatStatus enumerates lifecycle states for support conversations.
type ChatStatus string

const (
	ChatStatusWaiting    ChatStatus = "WAITING"
	ChatStatusInProgress ChatStatus = "IN_PROGRESS"
	ChatStatusClosed     ChatStatus = "CLOSED"
)

// ChatPriority enumerates urgency.
type ChatPriority string

const (
	ChatPriorityLow    ChatPriority = "LOW"
	ChatPriorityMedium ChatPriority = "MEDIUM"
	ChatPriorityHigh   ChatPriority = "HIGH"
	ChatPriorityUrgent ChatPriority = "URGENT"
)

// ChatSource identifies where the conversation originated.
type ChatSource string

const (
	ChatSourceTelegram ChatSource = "TELEGRAM"
	ChatSourceWebsite  ChatSource = "WEBSITE"
	ChatSourceP2P      ChatSource = "P2P"
)

// EscalationTagPrefix marks chats flagged for human attention.
const EscalationTagPrefix = "escalated:"

// Chat is one support conversation between a user and the system/operator.
// Closing a chat is a status change, never a deletion.
type Chat struct {
	ID                 string
	UserID             string
	OperatorID         *string
	Status             ChatStatus
	Priority           ChatPriority
	Source             ChatSource
	Tags               []string
	EscalationReason   *string
	FirstOperatorReply *time.Time
	ClosedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsEscalated reports whether an escalation tag is already present.
func (c *Chat) IsEscalated() bool {
	for _, tag := range c.Tags {
		if strings.HasPrefix(tag, EscalationTagPrefix) {
			return true
		}
	}
	return false
}

// priorityRank orders priorities for comparisons.
var priorityRank = map[ChatPriority]int{
	ChatPriorityLow:    0,
	ChatPriorityMedium: 1,
	ChatPriorityHigh:   2,
	ChatPriorityUrgent: 3,
}

// AtLeast returns the higher of the two priorities.
func (p ChatPriority) AtLeast(min ChatPriority) ChatPriority {
	if priorityRank[p] < priorityRank[min] {
		return min
	}
	return p
}
