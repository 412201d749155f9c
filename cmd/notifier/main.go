package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

// notification 是队列中消息的原始形态
// Data 的具体结构取决于 Type，这里先保留原始 JSON，按类型再反序列化
type notification struct {
	Type           string          `json:"type"`
	UserID         int64           `json:"userID"`
	Email          string          `json:"email"`
	TelegramChatID *int64          `json:"telegramChatID"`
	Data           json.RawMessage `json:"data"`
}

// renderNotification 根据消息类型生成通知的标题和正文
// 正文是纯文本，邮件和 telegram 共用同一份
func renderNotification(n *notification) (subject string, body string, err error) {
	switch n.Type {
	case "schedule_ready":
		var data domain.ScheduleReadyData
		if err := json.Unmarshal(n.Data, &data); err != nil {
			return "", "", err
		}
		subject = "门店排班系统 - 排班表已发布"
		body = fmt.Sprintf("%s，你好：\n\n%d 年 %d 月的排班表已经发布，请登录系统查看你的排班安排。",
			data.FullName, data.Year, data.Month)
	case "assignment_changed":
		var data domain.AssignmentChangedData
		if err := json.Unmarshal(n.Data, &data); err != nil {
			return "", "", err
		}
		subject = "门店排班系统 - 排班变更"
		if data.Removed {
			body = fmt.Sprintf("%s，你好：\n\n你在 %s 的排班（%s，%.1f 小时）已被取消，请留意排班表的最新安排。",
				data.FullName, data.Date, data.StoreName, data.Hours)
		} else {
			body = fmt.Sprintf("%s，你好：\n\n你的排班有变更：%s 到 %s 工作 %.1f 小时，请留意排班表的最新安排。",
				data.FullName, data.Date, data.StoreName, data.Hours)
		}
	case "new_account":
		var data domain.NewAccountData
		if err := json.Unmarshal(n.Data, &data); err != nil {
			return "", "", err
		}
		subject = "门店排班系统 - 账户信息"
		body = fmt.Sprintf("%s，你好：\n\n你的账户已创建。\n用户名：%s\n初始密码：%s\n\n请尽快登录系统修改密码。",
			data.FullName, data.Username, data.Password)
	default:
		return "", "", fmt.Errorf("不支持的通知类型: %s", n.Type)
	}

	return subject, body, nil
}

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// 验证邮件客户端是否连接成功
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建 telegram bot
	 **********************************************/
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("无法创建 telegram bot", slog.String("error", err.Error()))
		return
	}
	bot.Debug = cfg.Telegram.Debug
	logger.Info("telegram bot 已就绪", slog.String("username", bot.Self.UserName))

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 声明队列
	q, err := ch.QueueDeclare(
		"notification_queue", // 队列名称
		true,                 // 是否持久化
		false,                // 是否自动删除，设置为 false 可以避免没有消费者的时候自动删除队列
		false,                // 是否独占，即是否允许多个消费者访问这个队列
		false,                // 是否不等待，设置为 false，即等待 RabbitMQ 确认队列是否创建成功
		nil,                  // 额外参数
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，设置为空字符串，表示由 RabbitMQ 自动分配
		false,  // 是否自动去仍消息
		false,  // 是否独占队列
		false,  // 是否禁止消费者接受自己发送的消息，必须设置为 false，因为 RabbitMQ 不支持这个参数
		false,  // 是否不等待，等待 RabbitMQ 响应
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("收到消息", slog.String("message", string(msg.Body)))

				n := notification{}
				if err := json.Unmarshal(msg.Body, &n); err != nil {
					logger.Error("通知消息反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				subject, body, err := renderNotification(&n)
				if err != nil {
					logger.Error("无法生成通知内容", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				// 绑定了 telegram 的员工走 telegram，否则发邮件
				if n.TelegramChatID != nil {
					tgMsg := tgbotapi.NewMessage(*n.TelegramChatID, subject+"\n\n"+body)
					if _, err := bot.Send(tgMsg); err != nil {
						logger.Error("telegram 消息发送失败", slog.String("error", err.Error()))
						_ = msg.Nack(false, true) // 将消息重新入队
						continue
					}
					_ = msg.Ack(false)
					continue
				}

				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("无法设置邮件发件人", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(n.Email); err != nil {
					logger.Error("无法设置邮件收件人", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				m.Subject(subject)
				m.SetBodyString(mail.TypeTextPlain, body)

				if err := client.DialAndSend(m); err != nil {
					logger.Error("邮件发送失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 将消息重新入队
					continue
				}

				// 确认消息
				_ = msg.Ack(false)
			}
		}
	}()

	// 等待 CTRL+C 信号
	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	slog.Info("正在关闭 notifier...")
	cancel()
	wg.Wait() // 等待所有 goroutine 完成
	slog.Info("notifier 已成功关闭")
}
