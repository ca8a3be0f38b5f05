package draft

// PickTurn returns the team index (0 or 1) that owns pick slot i. The second
// captain opens, then the order snakes: 2,1,1,2,2,1,1,2,... The sequence
// repeats with period 4, so it works for any draft length, not just the 8
// picks of a 10-player draft.
func PickTurn(i int) int {
	switch i % 4 {
	case 0, 3:
		return 1
	default:
		return 0
	}
}

// BanTurn returns the captain index (0 or 1) that owns ban slot i. Bans
// strictly alternate.
func BanTurn(i int) int {
	return i % 2
}
