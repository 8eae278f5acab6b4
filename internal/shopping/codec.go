package shopping

import (
	"encoding/json"
	"fmt"
)

// EncodeLists serializes the whole collection in order
func EncodeLists(lists []List) ([]byte, error) {
	if lists == nil {
		lists = []List{}
	}
	data, err := json.Marshal(lists)
	if err != nil {
		return nil, fmt.Errorf("marshaling lists: %w", err)
	}
	return data, nil
}

// DecodeLists parses a collection produced by EncodeLists. Empty input is an
// empty collection.
func DecodeLists(data []byte) ([]List, error) {
	if len(data) == 0 {
		return []List{}, nil
	}
	var lists []List
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("unmarshaling lists: %w", err)
	}
	for i := range lists {
		if lists[i].Items == nil {
			lists[i].Items = []Item{}
		}
	}
	return lists, nil
}
