package reading

// Field names used by the readings table.
const (
	FieldDate       = "date"
	FieldWaterLevel = "waterLevel"
	FieldFlowRate   = "flowRate"
	FieldRainfall   = "rainfall"
)

// DateLayout is the layout of the date field.
const DateLayout = "2006-01-02"

// Reading is one canal gauge observation as stored in the database.
// Rainfall is nil when the rain gauge reported nothing for the day.
type Reading struct {
	Date       string   `json:"date" doc:"Observation date (YYYY-MM-DD)" example:"2023-01-01"`
	WaterLevel float64  `json:"waterLevel" doc:"Gauge water level in feet" example:"12.4"`
	FlowRate   float64  `json:"flowRate" doc:"Discharge in cusecs" example:"3400"`
	Rainfall   *float64 `json:"rainfall,omitempty" doc:"Rainfall in millimetres" example:"1.2"`
}

// Record converts the reading into a display record.
func (r Reading) Record() Record {
	fields := []Field{
		{Name: FieldDate, Value: r.Date},
		{Name: FieldWaterLevel, Value: r.WaterLevel},
		{Name: FieldFlowRate, Value: r.FlowRate},
	}
	if r.Rainfall != nil {
		fields = append(fields, Field{Name: FieldRainfall, Value: *r.Rainfall})
	}
	return NewRecord(fields...)
}

// FromReadings converts stored readings into a Dataset, keeping order.
func FromReadings(rs []Reading) Dataset {
	ds := make(Dataset, len(rs))
	for i, r := range rs {
		ds[i] = r.Record()
	}
	return ds
}

func mm(v float64) *float64 { return &v }

// SampleReadings returns the thirteen daily readings shipped with the dashboard.
func SampleReadings() []Reading {
	return []Reading{
		{Date: "2023-01-01", WaterLevel: 12.4, FlowRate: 3400, Rainfall: mm(0)},
		{Date: "2023-01-02", WaterLevel: 12.6, FlowRate: 3450, Rainfall: mm(1.2)},
		{Date: "2023-01-03", WaterLevel: 12.9, FlowRate: 3520, Rainfall: mm(4.5)},
		{Date: "2023-01-04", WaterLevel: 13.1, FlowRate: 3610},
		{Date: "2023-01-05", WaterLevel: 13.0, FlowRate: 3590, Rainfall: mm(0.4)},
		{Date: "2023-01-06", WaterLevel: 12.8, FlowRate: 3500, Rainfall: mm(0)},
		{Date: "2023-01-07", WaterLevel: 12.5, FlowRate: 3420, Rainfall: mm(0)},
		{Date: "2023-01-08", WaterLevel: 12.3, FlowRate: 3380, Rainfall: mm(2.1)},
		{Date: "2023-01-09", WaterLevel: 12.7, FlowRate: 3470},
		{Date: "2023-01-10", WaterLevel: 13.2, FlowRate: 3650, Rainfall: mm(6.8)},
		{Date: "2023-01-11", WaterLevel: 13.5, FlowRate: 3720, Rainfall: mm(3.3)},
		{Date: "2023-01-12", WaterLevel: 13.3, FlowRate: 3680, Rainfall: mm(0)},
		{Date: "2023-01-13", WaterLevel: 13.0, FlowRate: 3600, Rainfall: mm(0)},
	}
}

// Sample returns the sample readings as a Dataset.
func Sample() Dataset {
	return FromReadings(SampleReadings())
}
