package domain

// Channel represents the sales channel a transaction came through.
// Ranking partitions are independent per channel.
type Channel string

// Known channel values. The group key is open-ended; these constants
// seed fixtures and the live feed validator.
const (
	ChannelOnline  Channel = "ONLINE"
	ChannelStore   Channel = "STORE"
	ChannelPartner Channel = "PARTNER"
)

// String returns the string representation of Channel.
func (c Channel) String() string {
	return string(c)
}

// IsKnown checks if the channel is one of the predefined values.
func (c Channel) IsKnown() bool {
	return c == ChannelOnline || c == ChannelStore || c == ChannelPartner
}
