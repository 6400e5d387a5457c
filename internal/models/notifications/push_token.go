package models

type RegisterPushTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
	Platform string `json:"platform"`
	Timezone string `json:"timezone"`
}
