package enrichment

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"newsdesk/api/logger"
)

// Location is the coarse geography of a client. Nil fields mean the lookup
// failed or was not attempted.
type Location struct {
	Country *string
	City    *string
}

type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// GeoResolver maps addresses to locations using a local MaxMind database.
// It is safe for concurrent use; the underlying dataset is immutable.
type GeoResolver struct {
	reader cityReader
	log    logger.Logger
}

// NewGeoResolver opens the database at path. An empty path yields a resolver
// that always returns an empty Location.
func NewGeoResolver(path string, log logger.Logger) (*GeoResolver, error) {
	r := &GeoResolver{log: log}
	if path == "" {
		return r, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return r, fmt.Errorf("open geoip database: %w", err)
	}
	r.reader = reader
	return r, nil
}

// Lookup never returns an error; failures degrade to an empty Location.
func (g *GeoResolver) Lookup(rawIP string) (loc Location) {
	if g == nil || g.reader == nil {
		return Location{}
	}
	trimmed := strings.TrimSpace(rawIP)
	if trimmed == "" {
		return Location{}
	}
	ip := net.ParseIP(trimmed)
	if ip == nil {
		return Location{}
	}

	defer func() {
		if r := recover(); r != nil {
			g.log.Warn("GeoIP lookup panicked",
				logger.String("ip_prefix", RedactIP(trimmed)),
				logger.Any("panic", r),
			)
			loc = Location{}
		}
	}()

	record, err := g.reader.City(ip)
	if err != nil {
		g.log.Warn("GeoIP lookup failed",
			logger.String("ip_prefix", RedactIP(trimmed)),
			logger.Error(err),
		)
		return Location{}
	}

	return Location{
		Country: nonEmpty(record.Country.IsoCode),
		City:    nonEmpty(record.City.Names["en"]),
	}
}

// Close releases the database.
func (g *GeoResolver) Close() error {
	if g == nil || g.reader == nil {
		return nil
	}
	return g.reader.Close()
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
