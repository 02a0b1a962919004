package cache

import (
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mission-budget/spender/internal/logger"
)

const keyBase = 10

type MemcacheClient struct {
	client *memcache.Client
}

type config interface {
	Hosts() []string
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{mc}, mc.Ping()
}

func reportKey(userID int64) string {
	return "report:" + strconv.FormatInt(userID, keyBase)
}

func (mc *MemcacheClient) CacheReport(userID int64, report string) error {
	logger.Info("cache report", zap.Int64("userID", userID))
	return mc.client.Set(&memcache.Item{
		Key:   reportKey(userID),
		Value: []byte(report),
	})
}

// GetReport returns memcache.ErrCacheMiss when there is no cached
// report for the user.
func (mc *MemcacheClient) GetReport(userID int64) (string, error) {
	item, err := mc.client.Get(reportKey(userID))
	if err != nil {
		return "", err
	}
	return string(item.Value), nil
}

func (mc *MemcacheClient) InvalidateReport(userID int64) error {
	logger.Info("invalidate cached report", zap.Int64("userID", userID))

	err := mc.client.Delete(reportKey(userID))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}
