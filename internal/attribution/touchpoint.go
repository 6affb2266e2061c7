package attribution

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/dateparse"
	"github.com/sells-group/attribution-cli/internal/model"
)

// UnknownChannel is assigned when an interaction has neither a channel nor a
// source.
const UnknownChannel = "Unknown"

// Touchpoint is a matched interaction with its parsed date and channel.
type Touchpoint struct {
	model.MatchRecord
	Date           time.Time
	Channel        string
	ConversionDate time.Time // zero when the conversion does not bound attribution
}

// PrepareTouchpoints parses interaction dates and assigns channels. The date
// comes from the timestamp, falling back to the interaction date column;
// rows whose date does not parse are dropped. With a non-empty mapping the
// channel is mapping[source], passing unmapped sources through unchanged.
// Without one the interaction's own channel is kept, else its source.
func PrepareTouchpoints(matched []model.MatchRecord, mapping map[string]string, layout string) []Touchpoint {
	out := make([]Touchpoint, 0, len(matched))
	var dropped int
	for _, m := range matched {
		raw := m.Interaction.Timestamp
		if raw == "" {
			raw = m.Interaction.Date
		}
		d, ok := dateparse.ParseDate(raw, layout)
		if !ok {
			dropped++
			continue
		}
		out = append(out, Touchpoint{
			MatchRecord: m,
			Date:        d,
			Channel:     resolveChannel(m.Interaction, mapping),
		})
	}
	if dropped > 0 {
		zap.L().Warn("dropped interactions with unparseable dates",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(out)),
		)
	}
	return out
}

func resolveChannel(in model.Interaction, mapping map[string]string) string {
	if len(mapping) > 0 {
		key := in.Source
		if key == "" {
			key = in.Channel
		}
		if ch, ok := mapping[key]; ok && ch != "" {
			return ch
		}
		if key != "" {
			return key
		}
		return UnknownChannel
	}
	switch {
	case in.Channel != "":
		return in.Channel
	case in.Source != "":
		return in.Source
	}
	return UnknownChannel
}
