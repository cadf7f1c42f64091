package cache

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.uber.org/zap"

	"github.com/bradfitz/gomemcache/memcache"

	ledgerent "github.com/sv1nxmmvt/fincontrol/internal/entity/ledger"
	"github.com/sv1nxmmvt/fincontrol/internal/logger"
)

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

func formatKey(userID uuid.UUID, period string) string {
	return "report:" + userID.String() + ":" + period
}

func (mc *MemcacheClient) CacheReport(userID uuid.UUID, period string, rows []ledgerent.ReportRow) error {
	value, err := json.Marshal(rows)
	if err != nil {
		return errors.Wrap(err, "encode report")
	}

	logger.Info("cache report",
		zap.String("userID", userID.String()), zap.String("period", period))
	return mc.client.Set(&memcache.Item{
		Key:   formatKey(userID, period),
		Value: value,
	})
}

func (mc *MemcacheClient) GetReport(userID uuid.UUID, period string) ([]ledgerent.ReportRow, error) {
	item, err := mc.client.Get(formatKey(userID, period))
	if err != nil {
		return nil, err
	}

	var rows []ledgerent.ReportRow
	if err = json.Unmarshal(item.Value, &rows); err != nil {
		return nil, errors.Wrap(err, "decode report")
	}
	return rows, nil
}

func (mc *MemcacheClient) InvalidateReports(userID uuid.UUID, periods []string) error {
	logger.Info("invalidate report cache", zap.String("userID", userID.String()))

	for _, period := range periods {
		err := mc.client.Delete(formatKey(userID, period))
		if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			return err
		}
	}
	return nil
}
