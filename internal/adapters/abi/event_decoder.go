package abi

import (
	"log/slog"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/steadifi/contract-harness/internal/domain/models"
)

// UndecodedEventType is the type given to logs no ABI event matches.
const UndecodedEventType = "log"

// EventDecoder turns receipt logs into typed events using a contract ABI
type EventDecoder struct {
	log *slog.Logger
}

// NewEventDecoder creates a new event decoder
func NewEventDecoder(log *slog.Logger) *EventDecoder {
	return &EventDecoder{log: log.With("component", "event-decoder")}
}

// DecodeLogs decodes every log. Logs whose signature is not in contractABI
// are kept as UndecodedEventType with their raw topics and data.
func (e *EventDecoder) DecodeLogs(logs []*types.Log, contractABI *ethabi.ABI) []models.Event {
	events := make([]models.Event, 0, len(logs))
	for _, l := range logs {
		ev, ok := e.decode(l, contractABI)
		if !ok {
			ev = rawEvent(l)
		}
		events = append(events, ev)
	}
	return events
}

func (e *EventDecoder) decode(l *types.Log, contractABI *ethabi.ABI) (models.Event, bool) {
	if contractABI == nil || len(l.Topics) == 0 {
		return models.Event{}, false
	}

	event, err := contractABI.EventByID(l.Topics[0])
	if err != nil {
		return models.Event{}, false
	}

	decoded := make(map[string]any)

	// Indexed parameters come from the topics after the signature
	var indexed ethabi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(indexed) > 0 {
		if err := ethabi.ParseTopicsIntoMap(decoded, indexed, l.Topics[1:]); err != nil {
			e.log.Debug("failed to parse topics", "event", event.Name, "error", err)
			return models.Event{}, false
		}
	}

	// Non-indexed parameters come from the data section
	nonIndexed := event.Inputs.NonIndexed()
	if len(nonIndexed) > 0 && len(l.Data) > 0 {
		if err := nonIndexed.UnpackIntoMap(decoded, l.Data); err != nil {
			e.log.Debug("failed to unpack event data", "event", event.Name, "error", err)
			return models.Event{}, false
		}
	}

	ev := models.Event{Type: event.RawName, Address: l.Address.Hex()}
	for _, input := range event.Inputs {
		if val, ok := decoded[input.Name]; ok {
			ev.Attributes = append(ev.Attributes, models.Attribute{Key: input.Name, Value: FormatValue(val)})
		}
	}
	return ev, true
}

func rawEvent(l *types.Log) models.Event {
	ev := models.Event{Type: UndecodedEventType, Address: l.Address.Hex()}
	for _, topic := range l.Topics {
		ev.Attributes = append(ev.Attributes, models.Attribute{Key: "topic", Value: topic.Hex()})
	}
	ev.Attributes = append(ev.Attributes, models.Attribute{Key: "data", Value: hexutil.Encode(l.Data)})
	return ev
}
