package service

import (
	"github.com/google/uuid"

	"github.com/dkondrashov/marketplace-backend/internal/logger"
)

// Notifier доставляет событие пользователю (WebSocket плюс сохранение в БД).
// Реализуется ws.Hub.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// notify отправляет событие, не прерывая основную операцию при ошибке.
func notify(n Notifier, userID uuid.UUID, event string, data any) {
	if n == nil {
		return
	}
	if err := n.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id": userID,
			"event":   event,
			"error":   err.Error(),
		}).Warn("не удалось доставить уведомление")
	}
}
