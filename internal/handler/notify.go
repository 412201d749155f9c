package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/roster"
)

// publishNotification 将通知投递到消息队列，由 notifier 进程负责实际发送
// 通知是尽力而为的：投递失败只记录日志，绝不能影响触发它的业务操作
func (h *Handler) publishNotification(user *domain.User, msgType string, data any) {
	msg := domain.NotificationMessage{
		Type:           msgType,
		UserID:         user.ID,
		Email:          user.Email,
		TelegramChatID: user.TelegramChatID,
		Data:           data,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		slog.Error("无法序列化通知消息", "type", msgType, "userID", user.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.notifyChannel.PublishWithContext(
		ctx,
		"",
		"notification_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		slog.Error("无法投递通知消息", "type", msgType, "userID", user.ID, "error", err)
	}
}

// acquireScheduleLock 获取某个月份排班表的编辑锁
// 同一个排班表的修改必须串行化，两个会话同时修改时后来者拿不到锁，
// 返回 Conflict 让客户端基于最新状态重试
func (h *Handler) acquireScheduleLock(month int32, year int32) (func(), error) {
	key := fmt.Sprintf("schedule_lock:%d-%02d", year, month)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	ok, err := h.redisClient.SetNX(ctx, key, "1", time.Duration(h.config.Redis.LockExpiration)*time.Second).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, roster.NewError(roster.KindConflict, "该排班表正在被其他人修改，请稍后重试")
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
		defer cancel()
		if err := h.redisClient.Del(ctx, key).Err(); err != nil && err != redis.Nil {
			slog.Error("无法释放排班表编辑锁", "key", key, "error", err)
		}
	}

	return release, nil
}
