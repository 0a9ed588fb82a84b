package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/assetkit/assetindexer/types"
)

const (
	SourceKafka = "kafka"
	SourceFile  = "file"
)

type SourceConfig struct {
	Type       string
	Brokers    []string
	Topic      string
	GroupID    string
	Start      string // first, last or block:<number>
	EventsFile string
}

func (sc SourceConfig) Validate() error {
	switch sc.Type {
	case SourceKafka:
		return sc.validateKafka()
	case SourceFile:
		if sc.EventsFile == "" {
			return types.NewValidationError("EVENTS_FILE", "required field is missing")
		}
		return nil
	default:
		return types.NewValidationError("SOURCE_TYPE", fmt.Sprintf("invalid value '%s', must be '%s' or '%s'", sc.Type, SourceKafka, SourceFile))
	}
}

func (sc SourceConfig) validateKafka() error {
	if len(sc.Brokers) == 0 {
		return types.NewValidationError("KAFKA_BROKERS", "required field is missing")
	}
	for _, broker := range sc.Brokers {
		host, port, err := net.SplitHostPort(broker)
		if err != nil || host == "" {
			return types.NewInvalidValueError("KAFKA_BROKERS", broker, "must be host:port")
		}
		if p, err := strconv.Atoi(port); err != nil || p < MinPortNumber || p > MaxPortNumber {
			return types.NewInvalidValueError("KAFKA_BROKERS", broker, "port is out of range")
		}
	}
	if sc.Topic == "" {
		return types.NewValidationError("KAFKA_TOPIC", "required field is missing")
	}
	if sc.GroupID == "" {
		return types.NewValidationError("KAFKA_GROUP_ID", "required field is missing")
	}
	if _, _, err := ParseStart(sc.Start); err != nil {
		return err
	}
	return nil
}

// ParseStart parses KAFKA_START. first and last select where a new consumer
// group begins; block:<n> begins at the first offset and drops events below
// block n on the client side.
func ParseStart(start string) (fromLast bool, fromBlock uint64, err error) {
	switch {
	case start == "first":
		return false, 0, nil
	case start == "last":
		return true, 0, nil
	case strings.HasPrefix(start, "block:"):
		n, err := strconv.ParseUint(strings.TrimPrefix(start, "block:"), 10, 64)
		if err != nil {
			return false, 0, types.NewInvalidValueError("KAFKA_START", start, "expected block:<number>")
		}
		return false, n, nil
	default:
		return false, 0, types.NewInvalidValueError("KAFKA_START", start, "must be first, last or block:<number>")
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
