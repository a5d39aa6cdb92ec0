package dust

import (
	"encoding/json"
	"io"
)

// MarshalRegions pretty-prints regions as JSON for humans or pipelines.
func MarshalRegions(w io.Writer, regions []Region) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(regions)
}

// UnmarshalRegions decodes regions JSON written by MarshalRegions.
func UnmarshalRegions(r io.Reader) ([]Region, error) {
	var rs []Region
	if err := json.NewDecoder(r).Decode(&rs); err != nil {
		return nil, err
	}
	return rs, nil
}
