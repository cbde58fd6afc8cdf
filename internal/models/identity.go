package models

// Identity описывает пользователя, которому принадлежит сессия.
type Identity struct {
	SessionKey string `json:"session_key"`
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
}
