package util

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

var (
	geoipDB    *geoip2.Reader
	geoipCache *cache.Cache
)

// InitGeoIP initializes the local GeoIP2 database reader and an in-memory
// cache. Provide the path to a GeoIP2/GeoLite2 .mmdb file via dbPath or the
// GEOIP_DB_PATH env var. If no path is configured, initialization is a no-op
// and LookupLocation returns "" for every IP.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		dbPath = os.Getenv("GEOIP_DB_PATH")
	}
	if dbPath == "" {
		return nil
	}

	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoipDB = r
	// Cache entries for 24h, purge every hour
	geoipCache = cache.New(24*time.Hour, 1*time.Hour)
	return nil
}

// CloseGeoIP closes the GeoIP DB if opened.
func CloseGeoIP() {
	if geoipDB != nil {
		_ = geoipDB.Close()
		geoipDB = nil
	}
}

// LookupLocation resolves an IP to "City/Country" for audit entries.
// Returns "" when the GeoIP DB is not configured, the IP is unparseable,
// or no location is known.
func LookupLocation(ipStr string) string {
	if geoipDB == nil || ipStr == "" {
		return ""
	}

	if geoipCache != nil {
		if v, found := geoipCache.Get(ipStr); found {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	record, err := geoipDB.City(ip)
	if err != nil {
		return ""
	}

	city := record.City.Names["en"]
	country := record.Country.Names["en"]
	location := ""
	switch {
	case city != "" && country != "":
		location = fmt.Sprintf("%s/%s", city, country)
	case country != "":
		location = country
	}

	if geoipCache != nil {
		geoipCache.Set(ipStr, location, cache.DefaultExpiration)
	}
	return location
}
