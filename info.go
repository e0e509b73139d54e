package lasagna

import (
	"github.com/gcomneno/lasagna-v2/classify"
	"github.com/gcomneno/lasagna-v2/container"
	"github.com/gcomneno/lasagna-v2/predictor"
)

// SegmentInfo is a lightweight, residual-free view of one segment's table entry.
type SegmentInfo struct {
	Start     int
	End       int
	Predictor predictor.Type
	Pattern   classify.Pattern
	Salience  uint8
}

// Info is a residual-free summary of a container: header, context, and segment table
// fields only, none of the per-sample reconstruction detail.
type Info struct {
	NPoints          int
	NSegments        int
	Dt               float64
	T0               any
	Unit             string
	CompressionRatio float64
	Segments         []SegmentInfo
}

// ReadInfo decodes data and returns a residual-free summary built from its header,
// context, and segment table fields. It decodes through container.Decode like any
// other reader of this format; it does not carry the residual values into Info.
func ReadInfo(data []byte) (Info, error) {
	c, err := container.Decode(data)
	if err != nil {
		return Info{}, err
	}

	segments := make([]SegmentInfo, len(c.Segments))
	for i, seg := range c.Segments {
		segments[i] = SegmentInfo{
			Start:     int(seg.StartIdx),
			End:       int(seg.EndIdx),
			Predictor: seg.PredictorType,
			Pattern:   seg.Pattern,
			Salience:  seg.Salience,
		}
	}

	var ratio float64
	if c.NPoints > 0 {
		// Each raw sample is 8 bytes (float64); compare against the encoded size.
		ratio = float64(len(data)) / (float64(c.NPoints) * 8)
	}

	return Info{
		NPoints:          int(c.NPoints),
		NSegments:        len(c.Segments),
		Dt:               c.Context.Dt,
		T0:               c.Context.T0,
		Unit:             c.Context.Unit,
		CompressionRatio: ratio,
		Segments:         segments,
	}, nil
}

// TagRow is one row of the per-segment tag export.
type TagRow struct {
	SegmentID int
	Start     int
	End       int
	Len       int
	Predictor predictor.Type
	Pattern   classify.Pattern
	Salience  uint8
	Energy    float64
	Mean      float64
	Slope     float64
	Q         float64
}

// ExportTags decodes data and returns one TagRow per segment. Energy is recomputed
// from the dequantized series, since the wire format does not store it directly.
func ExportTags(data []byte) ([]TagRow, error) {
	c, err := container.Decode(data)
	if err != nil {
		return nil, err
	}

	ts, err := Decode(data)
	if err != nil {
		return nil, err
	}

	rows := make([]TagRow, len(c.Segments))
	for i, seg := range c.Segments {
		window := ts.Values[seg.StartIdx:seg.EndIdx]

		mu := meanOf(window)
		var energy float64
		for _, v := range window {
			d := v - mu
			energy += d * d
		}

		rows[i] = TagRow{
			SegmentID: i,
			Start:     int(seg.StartIdx),
			End:       int(seg.EndIdx),
			Len:       seg.Len(),
			Predictor: seg.PredictorType,
			Pattern:   seg.Pattern,
			Salience:  seg.Salience,
			Energy:    energy,
			Mean:      seg.Mean,
			Slope:     seg.Slope,
			Q:         seg.Q,
		}
	}

	return rows, nil
}

// PatternStats aggregates point fraction, salience, and energy statistics for one
// pattern tag across a container.
type PatternStats struct {
	PointFraction float64
	SalienceMin   uint8
	SalienceMax   uint8
	SalienceMean  float64
	EnergyMin     float64
	EnergyMax     float64
	EnergyMean    float64
	MotifCount    int
}

// Profile is the per-pattern aggregate view of a container's segments.
type Profile struct {
	ByPattern map[classify.Pattern]PatternStats
}

// ExportProfile decodes data and aggregates its per-segment tags into per-pattern
// statistics, including motif counts: the number of maximal runs of consecutive
// segments sharing the same pattern.
func ExportProfile(data []byte) (Profile, error) {
	rows, err := ExportTags(data)
	if err != nil {
		return Profile{}, err
	}

	totalPoints := 0
	for _, r := range rows {
		totalPoints += r.Len
	}

	type acc struct {
		points                int
		salienceSum           int
		salienceMin, salMax   uint8
		energyMin, energyMax  float64
		energySum             float64
		count                 int
		sawMin, sawMax        bool
	}

	accs := make(map[classify.Pattern]*acc)
	var order []classify.Pattern

	for _, r := range rows {
		a, ok := accs[r.Pattern]
		if !ok {
			a = &acc{}
			accs[r.Pattern] = a
			order = append(order, r.Pattern)
		}

		a.points += r.Len
		a.salienceSum += int(r.Salience)
		a.energySum += r.Energy
		a.count++

		if !a.sawMin || r.Salience < a.salienceMin {
			a.salienceMin = r.Salience
			a.sawMin = true
		}
		if !a.sawMax || r.Salience > a.salMax {
			a.salMax = r.Salience
			a.sawMax = true
		}
		if a.count == 1 || r.Energy < a.energyMin {
			a.energyMin = r.Energy
		}
		if a.count == 1 || r.Energy > a.energyMax {
			a.energyMax = r.Energy
		}
	}

	motifCounts := make(map[classify.Pattern]int)
	var prevPattern classify.Pattern
	havePrev := false
	for _, r := range rows {
		if !havePrev || r.Pattern != prevPattern {
			motifCounts[r.Pattern]++
		}
		prevPattern = r.Pattern
		havePrev = true
	}

	byPattern := make(map[classify.Pattern]PatternStats, len(order))
	for _, p := range order {
		a := accs[p]

		var pointFraction float64
		if totalPoints > 0 {
			pointFraction = float64(a.points) / float64(totalPoints)
		}

		byPattern[p] = PatternStats{
			PointFraction: pointFraction,
			SalienceMin:   a.salienceMin,
			SalienceMax:   a.salMax,
			SalienceMean:  float64(a.salienceSum) / float64(a.count),
			EnergyMin:     a.energyMin,
			EnergyMax:     a.energyMax,
			EnergyMean:    a.energySum / float64(a.count),
			MotifCount:    motifCounts[p],
		}
	}

	return Profile{ByPattern: byPattern}, nil
}

func meanOf(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}

	return sum / float64(len(x))
}
