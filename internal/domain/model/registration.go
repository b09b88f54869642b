package model

import (
	"strconv"

	"telegram-registration-bridge/internal/domain"
)

// RegistrationPayload is the body POSTed to the backend. It lives for a
// single /start invocation and is never stored.
type RegistrationPayload struct {
	UUID   string `json:"uuid"`
	ChatID string `json:"chatId"`
}

// NewRegistrationPayload keeps userID byte-for-byte and renders chatID in base 10.
func NewRegistrationPayload(userID string, chatID int64) (RegistrationPayload, error) {
	if userID == "" {
		return RegistrationPayload{}, domain.ErrMissingUserID
	}
	return RegistrationPayload{
		UUID:   userID,
		ChatID: strconv.FormatInt(chatID, 10),
	}, nil
}
