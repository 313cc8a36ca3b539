package models

import (
	"bytes"
	"encoding/json"
)

// TimePeriodMatch pairs a time period with the year chosen for it.
type TimePeriodMatch struct {
	Period string
	Year   string
}

// TimePeriodMatches is an ordered mapping from time period to year. It is
// encoded as a JSON object whose keys keep their order.
type TimePeriodMatches []TimePeriodMatch

// Get returns the year matched for a period.
func (m TimePeriodMatches) Get(period string) (string, bool) {
	for _, match := range m {
		if match.Period == period {
			return match.Year, true
		}
	}
	return "", false
}

// Years returns the matched years in period order.
func (m TimePeriodMatches) Years() []string {
	years := make([]string, len(m))
	for i, match := range m {
		years[i] = match.Year
	}
	return years
}

// MarshalJSON encodes the matches as an ordered JSON object.
func (m TimePeriodMatches) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, match := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(match.Period)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(match.Year)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
