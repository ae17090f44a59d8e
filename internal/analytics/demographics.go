package analytics

import (
	"sort"
	"strconv"
	"strings"

	"github.com/radiusdt/ads-insights/internal/models"
	"github.com/shopspring/decimal"
)

// buildDemographics aggregates audience rows by age bucket and by gender.
// With no demographic rows the result is Available=false and empty fields;
// downstream consumers must treat that as absence of data.
func (e *Engine) buildDemographics(rows []models.DemographicRow) Demographics {
	if len(rows) == 0 {
		return Demographics{}
	}

	type bucket struct {
		spend decimal.Decimal
		reach int64
	}

	ages := make(map[string]*bucket)
	genders := make(map[string]*bucket)
	totalSpend := decimal.Zero

	for _, r := range rows {
		spend := decimalOf(r.Spend)
		totalSpend = totalSpend.Add(spend)
		reach := valueOf(r.Reach)

		if r.Age != "" {
			b, ok := ages[r.Age]
			if !ok {
				b = &bucket{spend: decimal.Zero}
				ages[r.Age] = b
			}
			b.spend = b.spend.Add(spend)
			b.reach += reach
		}
		if r.Gender != "" {
			b, ok := genders[r.Gender]
			if !ok {
				b = &bucket{spend: decimal.Zero}
				genders[r.Gender] = b
			}
			b.spend = b.spend.Add(spend)
			b.reach += reach
		}
	}

	d := Demographics{Available: true}

	for age, b := range ages {
		d.AgeGroups = append(d.AgeGroups, AgeGroupStat{
			Age:   age,
			Spend: money(b.spend),
			Reach: b.reach,
			Share: share(b.spend, totalSpend),
		})
	}
	sort.Slice(d.AgeGroups, func(i, j int) bool {
		return d.AgeGroups[i].Age < d.AgeGroups[j].Age
	})

	for gender, b := range genders {
		d.Genders = append(d.Genders, GenderStat{
			Gender: gender,
			Spend:  money(b.spend),
			Reach:  b.reach,
			Share:  share(b.spend, totalSpend),
		})
	}
	sort.Slice(d.Genders, func(i, j int) bool {
		return d.Genders[i].Gender < d.Genders[j].Gender
	})

	d.AverageAge = averageAge(d.AgeGroups)

	return d
}

// averageAge is the reach-weighted mean of age-bucket midpoints.
func averageAge(groups []AgeGroupStat) float64 {
	var weighted float64
	var totalReach int64

	for _, g := range groups {
		mid, ok := ageMidpoint(g.Age)
		if !ok {
			continue
		}
		weighted += mid * float64(g.Reach)
		totalReach += g.Reach
	}
	if totalReach == 0 {
		return 0
	}
	return weighted / float64(totalReach)
}

// ageMidpoint parses platform age buckets like "25-34" or "65+".
func ageMidpoint(bucket string) (float64, bool) {
	bucket = strings.TrimSpace(bucket)
	if strings.HasSuffix(bucket, "+") {
		lo, err := strconv.ParseFloat(strings.TrimSuffix(bucket, "+"), 64)
		if err != nil {
			return 0, false
		}
		return lo + 5, true
	}
	parts := strings.SplitN(bucket, "-", 2)
	if len(parts) != 2 {
		return 0, false
	}
	lo, err1 := strconv.ParseFloat(parts[0], 64)
	hi, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return (lo + hi) / 2, true
}

// share is the percentage of total, 0 when the total is zero.
func share(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	return money(part.Div(total).Mul(decimal.NewFromInt(100)))
}
