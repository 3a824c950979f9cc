package metrics

import (
	"time"

	"github.com/netlens/netlens/pkg/log"
	"github.com/netlens/netlens/pkg/storage"
)

// Collector refreshes the inventory gauges from the store on a timer.
type Collector struct {
	store  storage.Store
	stopCh chan struct{}
}

// NewCollector creates a collector over the given store.
func NewCollector(store storage.Store) *Collector {
	return &Collector{
		store:  store,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	logger := log.WithComponent("metrics")

	projects, err := c.store.ListProjects()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list projects")
		return
	}
	ProjectsTotal.Set(float64(len(projects)))

	users, err := c.store.ListUsers()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list users")
	} else {
		UsersTotal.Set(float64(len(users)))
	}

	byVendor := map[string]int{}
	totalDocs := 0
	for _, project := range projects {
		records, err := c.store.ListDeviceRecords(project.ID)
		if err != nil {
			logger.Error().Err(err).Str("project_id", project.ID).Msg("Failed to list device records")
			continue
		}
		for _, rec := range records {
			byVendor[string(rec.Vendor)]++
		}

		docs, err := c.store.ListDocuments(project.ID)
		if err != nil {
			logger.Error().Err(err).Str("project_id", project.ID).Msg("Failed to list documents")
			continue
		}
		for _, doc := range docs {
			if !doc.Deleted {
				totalDocs++
			}
		}
	}

	DevicesTotal.Reset()
	for vendor, n := range byVendor {
		DevicesTotal.WithLabelValues(vendor).Set(float64(n))
	}
	DocumentsTotal.Set(float64(totalDocs))
}
