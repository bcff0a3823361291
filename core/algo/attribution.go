package algo

import (
	"math"

	"github.com/huangsam/prefscore/schema"
)

// attributor splits a rating into per-product-tag contributions in final rating units.
type attributor struct {
	cfg          schema.RatingConfig
	summedOffset float64
	records      map[int64]*schema.ContributionRecord
}

func newAttributor(cfg schema.RatingConfig, summedOffset float64, records map[int64]*schema.ContributionRecord) *attributor {
	return &attributor{cfg: cfg, summedOffset: summedOffset, records: records}
}

// contribute attributes one matching association to its product tag.
// summed is the summed association of the preference tag on this product and ref the
// reference scale on the side of summed. A vetoed association contributes -Inf.
func (at *attributor) contribute(preference *schema.Preference, a schema.Association, summed, offset, ref float64, vetoed bool) {
	rec, ok := at.records[a.ProductTagID]
	if !ok {
		rec = schema.NewContributionRecord(a.ProductTagID)
		at.records[a.ProductTagID] = rec
	}
	if a.Value == 0 || offset == 0 {
		return
	}

	c := 0.0
	// Associations that cancel out on this tag attribute nothing.
	if summed != 0 {
		c = a.Value
		// Keeps one preference tag from contributing more than 1 in aggregate.
		if absSummed := math.Abs(summed); absSummed > 1 {
			c = a.Value / absSummed
		}
		c /= ref
		c /= float64(len(preference.Tags))
		// a.Value carries the direction of the association; the offset carries the user's.
		c *= signum(offset)
		c = c * math.Abs(offset) / at.summedOffset
		c *= at.cfg.RatingScale
	}

	if vetoed {
		c = math.Inf(-1)
	}
	rec.Add(preference.ID, c)
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return x // keeps zero and NaN
	}
}
