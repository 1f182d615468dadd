package track

// Stats summarizes the tracker's contents. All values are deterministic
// functions of the tracked set; nothing is sampled.
type Stats struct {
	Count        int          `json:"count"`
	CountsByKind map[Kind]int `json:"counts_by_kind"`

	// TimeRange spans the union of every window. Zero when empty.
	TimeRange Window `json:"time_range"`

	// AverageDuration is the mean window duration.
	AverageDuration float64 `json:"average_duration"`

	// CanvasUtilization is the mean object area divided by the canvas
	// area.
	CanvasUtilization float64 `json:"canvas_utilization_ratio"`
}

// Statistics computes summary statistics over every tracked object.
func (t *Tracker) Statistics() Stats {
	s := Stats{
		Count:        len(t.objects),
		CountsByKind: make(map[Kind]int),
	}
	if s.Count == 0 {
		return s
	}

	var totalDuration, totalArea float64
	first := true
	for _, o := range t.objects {
		s.CountsByKind[o.Kind]++
		totalDuration += o.Window.Duration()
		totalArea += o.Box.Area()

		if first {
			s.TimeRange = o.Window
			first = false
			continue
		}
		if o.Window.Start < s.TimeRange.Start {
			s.TimeRange.Start = o.Window.Start
		}
		if o.Window.End > s.TimeRange.End {
			s.TimeRange.End = o.Window.End
		}
	}

	n := float64(s.Count)
	s.AverageDuration = totalDuration / n
	s.CanvasUtilization = (totalArea / n) / (t.canvas.Width * t.canvas.Height)
	return s
}
