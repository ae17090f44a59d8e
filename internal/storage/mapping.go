package storage

import "github.com/radiusdt/ads-insights/internal/models"

// Mapping from transformed insights to stored rows. Nil metric pointers
// carry through as NULL so "no data" is never conflated with zero. Records
// missing their dimension key cannot be upserted and are counted as skipped.

func mapCampaignRows(clientID int64, period models.Period, insights []models.Insight) (rows []models.CampaignRow, skipped int) {
	for _, ins := range insights {
		if ins.CampaignID == "" {
			skipped++
			continue
		}
		rows = append(rows, models.CampaignRow{
			ClientID:     clientID,
			MonthYear:    period,
			CampaignID:   ins.CampaignID,
			CampaignName: ins.CampaignName,
			Objective:    ins.Objective,
			Status:       ins.Status,
			Impressions:  ins.Impressions,
			Reach:        ins.Reach,
			Frequency:    ins.Frequency,
			Clicks:       ins.Clicks,
			Spend:        ins.Spend,
			CPC:          ins.CPC,
			CTR:          ins.CTR,
			Conversions:  ins.Conversions,
			ConvValue:    ins.ConversionValue,
			ROAS:         ins.ROAS,
			DateStart:    ins.DateStart,
			DateStop:     ins.DateStop,
		})
	}
	return rows, skipped
}

func mapDemographicRows(clientID int64, period models.Period, insights []models.Insight) (rows []models.DemographicRow, skipped int) {
	for _, ins := range insights {
		if ins.Age == "" && ins.Gender == "" {
			skipped++
			continue
		}
		rows = append(rows, models.DemographicRow{
			ClientID:    clientID,
			MonthYear:   period,
			Age:         ins.Age,
			Gender:      ins.Gender,
			Impressions: ins.Impressions,
			Reach:       ins.Reach,
			Clicks:      ins.Clicks,
			Spend:       ins.Spend,
			CPC:         ins.CPC,
			CTR:         ins.CTR,
			Conversions: ins.Conversions,
			ConvValue:   ins.ConversionValue,
			DateStart:   ins.DateStart,
			DateStop:    ins.DateStop,
		})
	}
	return rows, skipped
}

func mapRegionalRows(clientID int64, period models.Period, insights []models.Insight) (rows []models.RegionalRow, skipped int) {
	for _, ins := range insights {
		if ins.Region == "" {
			skipped++
			continue
		}
		rows = append(rows, models.RegionalRow{
			ClientID:    clientID,
			MonthYear:   period,
			Region:      ins.Region,
			Impressions: ins.Impressions,
			Reach:       ins.Reach,
			Clicks:      ins.Clicks,
			Spend:       ins.Spend,
			CPC:         ins.CPC,
			CTR:         ins.CTR,
			Conversions: ins.Conversions,
			ConvValue:   ins.ConversionValue,
			DateStart:   ins.DateStart,
			DateStop:    ins.DateStop,
		})
	}
	return rows, skipped
}

func mapDeviceRows(clientID int64, period models.Period, insights []models.Insight) (rows []models.DeviceRow, skipped int) {
	for _, ins := range insights {
		if ins.DevicePlatform == "" {
			skipped++
			continue
		}
		rows = append(rows, models.DeviceRow{
			ClientID:       clientID,
			MonthYear:      period,
			DevicePlatform: ins.DevicePlatform,
			Impressions:    ins.Impressions,
			Clicks:         ins.Clicks,
			Spend:          ins.Spend,
			CPC:            ins.CPC,
			CTR:            ins.CTR,
			DateStart:      ins.DateStart,
			DateStop:       ins.DateStop,
		})
	}
	return rows, skipped
}

func mapPlatformRows(clientID int64, period models.Period, insights []models.Insight) (rows []models.PlatformRow, skipped int) {
	for _, ins := range insights {
		if ins.PublisherPlatform == "" {
			skipped++
			continue
		}
		rows = append(rows, models.PlatformRow{
			ClientID:          clientID,
			MonthYear:         period,
			PublisherPlatform: ins.PublisherPlatform,
			PlatformPosition:  ins.PlatformPosition,
			Impressions:       ins.Impressions,
			Clicks:            ins.Clicks,
			Spend:             ins.Spend,
			CPC:               ins.CPC,
			CTR:               ins.CTR,
			DateStart:         ins.DateStart,
			DateStop:          ins.DateStop,
		})
	}
	return rows, skipped
}

func mapAdRows(clientID int64, period models.Period, insights []models.Insight) (rows []models.AdRow, skipped int) {
	for _, ins := range insights {
		if ins.AdID == "" {
			skipped++
			continue
		}
		rows = append(rows, models.AdRow{
			ClientID:     clientID,
			MonthYear:    period,
			AdID:         ins.AdID,
			AdName:       ins.AdName,
			CampaignID:   ins.CampaignID,
			CampaignName: ins.CampaignName,
			Impressions:  ins.Impressions,
			Reach:        ins.Reach,
			Clicks:       ins.Clicks,
			Spend:        ins.Spend,
			CPC:          ins.CPC,
			CTR:          ins.CTR,
			Conversions:  ins.Conversions,
			ConvValue:    ins.ConversionValue,
			DateStart:    ins.DateStart,
			DateStop:     ins.DateStop,
		})
	}
	return rows, skipped
}
