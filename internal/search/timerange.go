package search

// TimeRangeWindow is the canonical per-adapter mapping from the normalized
// TimeRange enum to each upstream's expected parameter.
type TimeRangeWindow struct {
	Seconds        int64
	BingFilter     string
	BaiduGPC       string
	SoAdv          string
	SogouSFrom     string
	BingImageQFT   int // minutes
}

var timeRangeTable = map[TimeRange]TimeRangeWindow{
	TimeRangeDay: {
		Seconds:      86400,
		BingFilter:   "ez1",
		BaiduGPC:     "stf=now-86400,now|stftype=1",
		SoAdv:        "d",
		SogouSFrom:   "inttime_day",
		BingImageQFT: 1440,
	},
	TimeRangeWeek: {
		Seconds:      604800,
		BingFilter:   "ez2",
		BaiduGPC:     "stf=now-604800,now|stftype=1",
		SoAdv:        "w",
		SogouSFrom:   "inttime_week",
		BingImageQFT: 10080,
	},
	TimeRangeMonth: {
		Seconds:      2592000,
		BingFilter:   "ez3",
		BaiduGPC:     "stf=now-2592000,now|stftype=1",
		SoAdv:        "m",
		SogouSFrom:   "inttime_month",
		BingImageQFT: 44640,
	},
	TimeRangeYear: {
		Seconds:      31536000,
		BingFilter:   "ez4",
		BaiduGPC:     "stf=now-31536000,now|stftype=1",
		SoAdv:        "y",
		SogouSFrom:   "inttime_year",
		BingImageQFT: 525600,
	},
}

// TimeRangeWindowFor returns the translation table entry for tr, and false
// for TimeRangeAny/TimeRangeHour which carry no upstream-specific mapping
// in the canonical table.
func TimeRangeWindowFor(tr TimeRange) (TimeRangeWindow, bool) {
	w, ok := timeRangeTable[tr]
	return w, ok
}
