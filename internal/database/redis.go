package database

import (
	"sync"

	"fieldops/pkg/config"
	"fieldops/pkg/queue"
)

var (
	dispatchQueueInstance *queue.DispatchQueue
	dispatchQueueOnce     sync.Once
)

// GetDispatchQueue 获取派单队列的单例实例
func GetDispatchQueue() *queue.DispatchQueue {
	dispatchQueueOnce.Do(func() {
		cfg := config.GetConfig()
		dispatchQueueInstance = queue.NewDispatchQueue(&queue.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	})
	return dispatchQueueInstance
}

// CloseDispatchQueue 关闭Redis连接
func CloseDispatchQueue() error {
	if dispatchQueueInstance != nil {
		return dispatchQueueInstance.Close()
	}
	return nil
}
