package model

import "encoding/json"

// PricePoint is a single daily observation in a price history, ordered
// oldest to newest. Volume is optional; HasVolume records whether the
// source supplied one at all, since a series where any day lacks volume
// is scored without volume entirely.
type PricePoint struct {
	Close     float64
	Volume    float64
	HasVolume bool
}

// pricePointJSON is the object form accepted on the wire. Sources disagree
// on the close key, so both "close" and "price" are read.
type pricePointJSON struct {
	Close  *float64 `json:"close,omitempty"`
	Price  *float64 `json:"price,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
}

// UnmarshalJSON accepts either a bare number or an object carrying a close
// price and optional volume. Entries of any other shape decode to the zero
// point, which the scoring engine treats as an invalid record; a garbled
// feed must degrade the analysis, not abort it.
func (p *PricePoint) UnmarshalJSON(data []byte) error {
	*p = PricePoint{}

	var bare float64
	if err := json.Unmarshal(data, &bare); err == nil {
		p.Close = bare
		return nil
	}

	var rec pricePointJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	switch {
	case rec.Close != nil:
		p.Close = *rec.Close
	case rec.Price != nil:
		p.Close = *rec.Price
	}
	if rec.Volume != nil {
		p.Volume = *rec.Volume
		p.HasVolume = true
	}
	return nil
}

// MarshalJSON always emits the object form.
func (p PricePoint) MarshalJSON() ([]byte, error) {
	rec := pricePointJSON{Close: &p.Close}
	if p.HasVolume {
		rec.Volume = &p.Volume
	}
	return json.Marshal(rec)
}
