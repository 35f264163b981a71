package message

import "time"

type Sender string

const (
	SenderUser    Sender = "user"
	SenderSupport Sender = "support"
)

type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Sender    Sender    `json:"sender"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Conversation struct {
	UserID      string  `json:"userId"`
	LastMessage Message `json:"lastMessage"`
	UnreadCount int     `json:"unreadCount"`
	Total       int     `json:"total"`
}

type SendRequest struct {
	Text string `json:"text"`
}
