package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisQueue 基于Redis的通知队列
type RedisQueue struct {
	client *redis.Client
	prefix string
}

// NotificationMessage 队列中的通知消息
type NotificationMessage struct {
	NotificationID uint   `json:"notification_id"`
	TenantID       uint   `json:"tenant_id"`
	UserID         uint   `json:"user_id"` // 接收人ID，0表示租户广播
	Title          string `json:"title"`
	Body           string `json:"body"`
	Category       string `json:"category"` // 如 fee_reminder、grade_published
	Created        int64  `json:"created"`
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewRedisQueue 创建Redis队列实例
func NewRedisQueue(config *Config) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "smp:notify"
	}

	return &RedisQueue{
		client: client,
		prefix: prefix,
	}
}

// Close 关闭Redis连接
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Ping 测试Redis连接
func (q *RedisQueue) Ping() error {
	ctx := context.Background()
	return q.client.Ping(ctx).Err()
}

// Publish 将通知加入队列（左侧入队）
func (q *RedisQueue) Publish(msg *NotificationMessage) error {
	ctx := context.Background()

	if msg.Created == 0 {
		msg.Created = time.Now().Unix()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化通知消息失败: %v", err)
	}

	if err := q.client.LPush(ctx, q.queueKey(msg.TenantID), data).Err(); err != nil {
		return fmt.Errorf("通知入队失败: %v", err)
	}

	return nil
}

// Consume 阻塞式出队，timeout为0时无限等待；无消息超时返回nil
func (q *RedisQueue) Consume(ctx context.Context, tenantID uint, timeout time.Duration) (*NotificationMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueKey(tenantID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	// BRPop返回 [key, value]
	if len(result) < 2 {
		return nil, fmt.Errorf("通知出队结果格式错误")
	}

	var msg NotificationMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("反序列化通知消息失败: %v", err)
	}

	return &msg, nil
}

// Length 查询队列长度
func (q *RedisQueue) Length(tenantID uint) (int64, error) {
	ctx := context.Background()
	return q.client.LLen(ctx, q.queueKey(tenantID)).Result()
}

func (q *RedisQueue) queueKey(tenantID uint) string {
	return fmt.Sprintf("%s:tenant:%d", q.prefix, tenantID)
}
