// internal/workers/communication/send-completion-notification/models.go
package sendcompletionnotification

type Input struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`

	// Eligibility summary rendered into the message body.
	FormattedPerCapita    string `json:"formattedPerCapita,omitempty"`
	FormattedWageMultiple string `json:"formattedWageMultiple,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "partial", "disabled"
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusDisabled = "disabled"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
