package user

import "time"

// User — любой участник чата; создаётся при первом контакте и не удаляется.
type User struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Claimed   bool      `json:"claimed"`
	CreatedAt time.Time `json:"created_at"`
}
