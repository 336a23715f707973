package pubsub

import (
	"fmt"
	"strings"
)

// ChannelIssued is the per-kind channel issuance events go to.
const ChannelIssued = "idgen:%s:issued"

// EventIDsIssued is published after a batch of IDs was handed out.
const EventIDsIssued = "ids_issued"

// IssuedChannel returns the channel name for issuances of kind.
func IssuedChannel(kind string) string {
	return fmt.Sprintf(ChannelIssued, kind)
}

// IssuedPayload describes one served generation request.
type IssuedPayload struct {
	Kind    string `json:"kind"`
	Count   int    `json:"count"`
	FirstID string `json:"first_id"`
	LastID  string `json:"last_id"`
}

// channelToTopicAndKey converts a Redis-style channel to a Kafka topic and message key.
//
//	"idgen:snowflake:issued" → topic: "idgen-issued", key: "snowflake"
func channelToTopicAndKey(channel string) (topic, key string, err error) {
	parts := strings.Split(channel, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[0] + "-" + parts[2], parts[1], nil
}
