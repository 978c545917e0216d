package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"newsdesk/api/config"
	"newsdesk/api/logger"
)

const clickHousePingTimeout = 10 * time.Second

// ClickHouseClient holds the native connection to the page view fact store.
type ClickHouseClient struct {
	Conn clickhouse.Conn
	log  logger.Logger
}

func NewClickHouseDB(cfg config.ClickHouseConfig, log logger.Logger) (*ClickHouseClient, error) {
	options := &clickhouse.Options{
		Addr: []string{cfg.Addr()},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "newsdesk-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 5 * time.Second,
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via Native TCP: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), clickHousePingTimeout)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Info("Connected to ClickHouse",
		logger.String("addr", cfg.Addr()),
		logger.String("database", cfg.Database),
	)
	return &ClickHouseClient{Conn: conn, log: log}, nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn == nil {
		return
	}
	if err := c.Conn.Close(); err != nil {
		c.log.Error("Error closing ClickHouse connection", logger.Error(err))
		return
	}
	c.log.Info("ClickHouse connection closed")
}
