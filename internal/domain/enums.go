// Package domain defines the core domain models for LED content scheduling.
package domain

// Channel selects which flagged document a consumer is served.
type Channel string

const (
	ChannelLive Channel = "live"
	ChannelTest Channel = "test"
)

// ParseChannel maps a query value to a Channel. Empty input means live.
func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case "", ChannelLive:
		return ChannelLive, true
	case ChannelTest:
		return ChannelTest, true
	}
	return "", false
}

// Defaults carried over from the content editor.
const (
	DefaultDelay     = 100
	DefaultTextColor = "#00ff00"
	DefaultLineColor = "#ffff00"

	// MaxLinesPerSession is the most line markers the display accepts in one session.
	MaxLinesPerSession = 13
	MaxChecksumLength  = 64
)
