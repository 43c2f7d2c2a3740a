// Package geo resolves public IP addresses to a country and city.
package geo

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/oschwald/geoip2-golang"
)

// Location is the result of a successful lookup. Either field may be empty.
type Location struct {
	Country string
	City    string
}

// Locator looks up an address. A miss is reported as (nil, nil).
type Locator interface {
	Lookup(ctx context.Context, addr netip.Addr) (*Location, error)
}

// MaxMindLocator reads a GeoLite2/GeoIP2 City database.
type MaxMindLocator struct {
	db *geoip2.Reader
}

// OpenMaxMind opens the .mmdb file at path
func OpenMaxMind(path string) (*MaxMindLocator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &MaxMindLocator{db: db}, nil
}

// Lookup returns the ISO country code and English city name for addr
func (l *MaxMindLocator) Lookup(ctx context.Context, addr netip.Addr) (*Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record, err := l.db.City(net.IP(addr.AsSlice()))
	if err != nil {
		return nil, fmt.Errorf("geoip lookup %s: %w", addr, err)
	}

	loc := &Location{
		Country: record.Country.IsoCode,
		City:    record.City.Names["en"],
	}
	if loc.Country == "" && loc.City == "" {
		return nil, nil
	}
	return loc, nil
}

// Close releases the database
func (l *MaxMindLocator) Close() error {
	return l.db.Close()
}

// NopLocator never resolves anything; it is used when no database is configured.
type NopLocator struct{}

func (NopLocator) Lookup(context.Context, netip.Addr) (*Location, error) {
	return nil, nil
}
