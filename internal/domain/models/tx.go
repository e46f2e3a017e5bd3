package models

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Attribute is one key/value pair of an emitted event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is a decoded log entry. Attributes keep emission order and a key
// may repeat.
type Event struct {
	Type       string      `json:"type"`
	Address    string      `json:"address,omitempty"`
	Attributes []Attribute `json:"attributes"`
}

// EventAttribute names one (event type, attribute key) pair present in a result.
type EventAttribute struct {
	Type string
	Key  string
}

// TxResult describes a mined transaction and the events it emitted.
type TxResult struct {
	Hash            common.Hash     `json:"hash"`
	BlockNumber     uint64          `json:"blockNumber"`
	GasUsed         uint64          `json:"gasUsed"`
	ContractAddress *common.Address `json:"contractAddress,omitempty"`
	Events          []Event         `json:"events"`
}

// AttributeValues returns every value of attribute key across events of eventType.
func (r *TxResult) AttributeValues(eventType, key string) []string {
	var values []string
	for _, ev := range r.Events {
		if ev.Type != eventType {
			continue
		}
		for _, attr := range ev.Attributes {
			if attr.Key == key {
				values = append(values, attr.Value)
			}
		}
	}
	return values
}

// EventAttributes lists each distinct (type, key) pair, sorted.
func (r *TxResult) EventAttributes() []EventAttribute {
	seen := make(map[EventAttribute]struct{})
	var out []EventAttribute
	for _, ev := range r.Events {
		for _, attr := range ev.Attributes {
			ea := EventAttribute{Type: ev.Type, Key: attr.Key}
			if _, ok := seen[ea]; ok {
				continue
			}
			seen[ea] = struct{}{}
			out = append(out, ea)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Key < out[j].Key
	})
	return out
}
