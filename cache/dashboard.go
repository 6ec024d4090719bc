package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"resale-explorer/metrics"
	"resale-explorer/models"
)

// DashboardCache keeps rendered dashboards for a short while, keyed by the
// filter criteria that produced them.
type DashboardCache struct {
	cache *gocache.Cache
}

// NewDashboardCache creates a cache whose entries live for ttl.
func NewDashboardCache(ttl time.Duration) *DashboardCache {
	return &DashboardCache{cache: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached dashboard for criteria, if any.
func (c *DashboardCache) Get(criteria models.FilterCriteria) (*models.Dashboard, bool) {
	if val, found := c.cache.Get(Key(criteria)); found {
		metrics.DashboardCache.WithLabelValues("hit").Inc()
		return val.(*models.Dashboard), true
	}
	metrics.DashboardCache.WithLabelValues("miss").Inc()
	return nil, false
}

// Set stores d under criteria with the default TTL.
func (c *DashboardCache) Set(criteria models.FilterCriteria, d *models.Dashboard) {
	c.cache.SetDefault(Key(criteria), d)
}

func (c *DashboardCache) Len() int {
	return c.cache.ItemCount()
}

func (c *DashboardCache) Clear() {
	c.cache.Flush()
}

// Key is a SHA-256 digest of the criteria in canonical form: flat models
// sorted and de-duplicated, month endpoints reduced to their calendar day.
func Key(c models.FilterCriteria) string {
	flatModels := make([]string, 0, len(c.FlatModels))
	seen := make(map[string]bool, len(c.FlatModels))
	for _, m := range c.FlatModels {
		if !seen[m] {
			seen[m] = true
			flatModels = append(flatModels, m)
		}
	}
	sort.Strings(flatModels)

	h := sha256.New()
	fmt.Fprintf(h, "town=%q\nflat_type=%q\n", c.Town, c.FlatType)
	for _, m := range flatModels {
		fmt.Fprintf(h, "flat_model=%q\n", m)
	}
	fmt.Fprintf(h, "storey=%d..%d\nfloor_area=%g..%g\nlease=%d..%d\nmonths=%s..%s\n",
		c.Storey.Min, c.Storey.Max,
		c.FloorArea.Min, c.FloorArea.Max,
		c.LeaseYears.Min, c.LeaseYears.Max,
		models.Day(c.Months.Start).Format("2006-01-02"),
		models.Day(c.Months.End).Format("2006-01-02"))
	return hex.EncodeToString(h.Sum(nil))
}
