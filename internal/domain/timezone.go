package domain

type Timezone struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Offset string `json:"offset"`
}

// Timezones is the fixed display list offered at booking time. The first
// entry is the default.
var Timezones = []Timezone{
	{Value: "Asia/Kolkata", Label: "Chennai, Kolkata, Mumbai, New Delhi", Offset: "GMT+5:30"},
	{Value: "America/Los_Angeles", Label: "Pacific Time", Offset: "GMT-7:00"},
	{Value: "America/New_York", Label: "Eastern Time", Offset: "GMT-4:00"},
	{Value: "Europe/London", Label: "London, United Kingdom", Offset: "GMT+1:00"},
	{Value: "Asia/Singapore", Label: "Singapore, Singapore", Offset: "GMT+8:00"},
	{Value: "Australia/Sydney", Label: "Sydney, Australia", Offset: "GMT+10:00"},
}

func DefaultTimezone() Timezone {
	return Timezones[0]
}

func LookupTimezone(value string) (Timezone, bool) {
	for _, tz := range Timezones {
		if tz.Value == value {
			return tz, true
		}
	}
	return Timezone{}, false
}
