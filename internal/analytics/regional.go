package analytics

import (
	"sort"

	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/shopspring/decimal"
)

// buildRegional aggregates per-region metrics and ranks regions by spend
// and by CTR independently. Rank ties break by region name ascending.
func (e *Engine) buildRegional(rows []models.RegionalRow) Regional {
	if len(rows) == 0 {
		return Regional{}
	}

	type bucket struct {
		spend       decimal.Decimal
		clicks      int64
		impressions int64
	}

	regions := make(map[string]*bucket)
	totalSpend := decimal.Zero
	for _, r := range rows {
		b, ok := regions[r.Region]
		if !ok {
			b = &bucket{spend: decimal.Zero}
			regions[r.Region] = b
		}
		spend := decimalOf(r.Spend)
		b.spend = b.spend.Add(spend)
		totalSpend = totalSpend.Add(spend)
		b.clicks += valueOf(r.Clicks)
		b.impressions += valueOf(r.Impressions)
	}

	stats := make([]RegionStat, 0, len(regions))
	for name, b := range regions {
		stats = append(stats, RegionStat{
			Region: name,
			Spend:  money(b.spend),
			Clicks: b.clicks,
			CTR:    safeRate(b.clicks, b.impressions) * 100,
			Share:  share(b.spend, totalSpend),
		})
	}

	// Rank by spend, ties by region name.
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Spend != stats[j].Spend {
			return stats[i].Spend > stats[j].Spend
		}
		return stats[i].Region < stats[j].Region
	})
	for i := range stats {
		stats[i].SpendRank = i + 1
	}

	// Rank by CTR independently, again breaking ties by region name.
	byCTR := make([]*RegionStat, len(stats))
	for i := range stats {
		byCTR[i] = &stats[i]
	}
	sort.Slice(byCTR, func(i, j int) bool {
		if byCTR[i].CTR != byCTR[j].CTR {
			return byCTR[i].CTR > byCTR[j].CTR
		}
		return byCTR[i].Region < byCTR[j].Region
	})
	for i, s := range byCTR {
		s.CTRRank = i + 1
	}

	return Regional{Available: true, Regions: stats}
}

// buildDevices rolls spend and clicks up by device platform and by
// publisher-platform placement.
func (e *Engine) buildDevices(devices []models.DeviceRow, platforms []models.PlatformRow) Devices {
	if len(devices) == 0 && len(platforms) == 0 {
		return Devices{}
	}

	d := Devices{Available: true}

	type bucket struct {
		spend       decimal.Decimal
		clicks      int64
		impressions int64
	}

	deviceBuckets := make(map[string]*bucket)
	for _, row := range devices {
		b, ok := deviceBuckets[row.DevicePlatform]
		if !ok {
			b = &bucket{spend: decimal.Zero}
			deviceBuckets[row.DevicePlatform] = b
		}
		b.spend = b.spend.Add(decimalOf(row.Spend))
		b.clicks += valueOf(row.Clicks)
		b.impressions += valueOf(row.Impressions)
	}
	for name, b := range deviceBuckets {
		d.Devices = append(d.Devices, DeviceStat{
			DevicePlatform: name,
			Spend:          money(b.spend),
			Clicks:         b.clicks,
			Impressions:    b.impressions,
		})
	}
	sort.Slice(d.Devices, func(i, j int) bool {
		return d.Devices[i].DevicePlatform < d.Devices[j].DevicePlatform
	})

	type placementKey struct {
		platform string
		position string
	}
	placementBuckets := make(map[placementKey]*bucket)
	for _, row := range platforms {
		key := placementKey{row.PublisherPlatform, row.PlatformPosition}
		b, ok := placementBuckets[key]
		if !ok {
			b = &bucket{spend: decimal.Zero}
			placementBuckets[key] = b
		}
		b.spend = b.spend.Add(decimalOf(row.Spend))
		b.clicks += valueOf(row.Clicks)
		b.impressions += valueOf(row.Impressions)
	}
	for key, b := range placementBuckets {
		d.Placements = append(d.Placements, PlacementStat{
			PublisherPlatform: key.platform,
			Position:          key.position,
			Spend:             money(b.spend),
			Clicks:            b.clicks,
			Impressions:       b.impressions,
		})
	}
	sort.Slice(d.Placements, func(i, j int) bool {
		if d.Placements[i].PublisherPlatform != d.Placements[j].PublisherPlatform {
			return d.Placements[i].PublisherPlatform < d.Placements[j].PublisherPlatform
		}
		return d.Placements[i].Position < d.Placements[j].Position
	})

	return d
}
